package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/field-crm/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(models.NewAppBuildInfo("1.2.0", "2026-05-01", "abc123"))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// offlineArgs points the client at a closed port and a temporary store.
func offlineArgs(t *testing.T, args ...string) []string {
	t.Helper()
	return append(args,
		"--dsn", filepath.Join(t.TempDir(), "fieldcrm.db"),
		"--api", "http://127.0.0.1:1",
		"--log-level", "error",
	)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "Build version: 1.2.0\nBuild date: 2026-05-01\nBuild commit: abc123\n", out)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.0","date":"2026-05-01","commit":"abc123"}`, out)

	out, err = execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0\n", out)
}

func TestRootCmd_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, want := range []string{"Core Commands:", "Data Commands:", "System Commands:", "serve", "sync", "visit", "--dsn", "--api"} {
		assert.Contains(t, out, want)
	}
}

func TestRootCmd_ConfigErrorsAreReturned(t *testing.T) {
	_, err := execute(t, "queue", "--dsn", filepath.Join(t.TempDir(), "fieldcrm.db"), "--api", "", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

// ── Offline commands ──────────────────────────────────────────────────────────

func TestQueueCmd_Empty(t *testing.T) {
	out, err := execute(t, offlineArgs(t, "queue")...)
	require.NoError(t, err)
	assert.Equal(t, "Queue is empty\n", out)

	out, err = execute(t, offlineArgs(t, "queue", "--json")...)
	require.NoError(t, err)
	assert.JSONEq(t, `{"writes":[],"length":0}`, out)
}

// Визит, созданный без сети, попадает в очередь и виден в queue.
func TestVisitNew_QueuedOffline(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "fieldcrm.db")
	common := []string{"--dsn", dsn, "--api", "http://127.0.0.1:1", "--log-level", "error"}

	out, err := execute(t, append([]string{"visit", "new", "--client", "7", "--property", "12", "--plot", "31", "--date", "2026-05-04"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "saved offline")

	out, err = execute(t, append([]string{"queue", "--json"}, common...)...)
	require.NoError(t, err)

	var queue models.QueueResponse
	require.NoError(t, json.Unmarshal([]byte(out), &queue))
	require.Equal(t, 1, queue.Length)
	assert.Equal(t, models.CollectionVisits, queue.Writes[0].Collection)
	assert.Equal(t, models.OperationCreate, queue.Writes[0].Operation)
	assert.JSONEq(t, `{"date":"2026-05-04","client_id":7,"property_id":12,"plot_id":31}`, string(queue.Writes[0].Payload))
}

func TestSyncCmd_Offline(t *testing.T) {
	out, err := execute(t, offlineArgs(t, "sync", "--json")...)
	require.NoError(t, err)

	var result models.SyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, models.TriggerManual, result.Trigger)
	assert.Zero(t, result.RemainingInQueue)
}

func TestStatusCmd_Offline(t *testing.T) {
	out, err := execute(t, offlineArgs(t, "status")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Remote API:     offline")
	assert.Contains(t, out, "Pending writes: 0")
	assert.Contains(t, out, "Local store:    healthy")
}
