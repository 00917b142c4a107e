// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/utils"
	"github.com/MKhiriev/field-crm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestAdapter returns an adapter pointed at the test server.
func newTestAdapter(t *testing.T, serverURL string) *httpServerAdapter {
	t.Helper()
	adapterCfg := config.ClientAdapter{HTTPAddress: serverURL, RequestTimeout: 2 * time.Second, HealthPath: "/health"}
	appCfg := config.ClientApp{APIToken: "secret-token"}

	a, err := NewHTTPServerAdapter(adapterCfg, appCfg, logger.Nop())
	require.NoError(t, err)
	return a.(*httpServerAdapter)
}

func writeBody(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// ── NewHTTPServerAdapter ─────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "scheme added", raw: "localhost:8080", want: "http://localhost:8080"},
		{name: "trailing slash trimmed", raw: "https://crm.example.com/api/", want: "https://crm.example.com/api"},
		{name: "spaces trimmed", raw: "  http://10.0.0.1:80  ", want: "http://10.0.0.1:80"},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "no host", raw: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHTTPServerAdapter_InvalidAddress(t *testing.T) {
	_, err := NewHTTPServerAdapter(config.ClientAdapter{}, config.ClientApp{}, logger.Nop())
	assert.Error(t, err)
}

// ── List ─────────────────────────────────────────────────────────────────────

func TestList_DecodesBareAndWrappedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bare array", body: `[{"id":1,"name":"Fazenda Boa Vista"},{"id":2,"name":"Sítio Esperança"}]`},
		{name: "wrapped array", body: `{"clients":[{"id":1,"name":"Fazenda Boa Vista"},{"id":2,"name":"Sítio Esperança"}],"total":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/clients", r.URL.Path)
				assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
				writeBody(t, w, http.StatusOK, tt.body)
			}))
			defer srv.Close()

			records, err := newTestAdapter(t, srv.URL).List(context.Background(), models.CollectionClients)

			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, int64(1), records[0].ID)
			assert.Equal(t, models.CollectionClients, records[0].Collection)
			client, err := models.DecodeRecord[models.Client](records[1])
			require.NoError(t, err)
			assert.Equal(t, "Sítio Esperança", client.Name)
		})
	}
}

func TestList_UnexpectedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "scalar", body: `"nope"`},
		{name: "missing list key", body: `{"items":[]}`},
		{name: "entity without id", body: `[{"name":"x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeBody(t, w, http.StatusOK, tt.body)
			}))
			defer srv.Close()

			_, err := newTestAdapter(t, srv.URL).List(context.Background(), models.CollectionClients)

			assert.ErrorIs(t, err, ErrUnexpectedResponse)
		})
	}
}

func TestList_UnknownCollection(t *testing.T) {
	a := newTestAdapter(t, "http://127.0.0.1:1")

	_, err := a.List(context.Background(), "tractors")

	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestList_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestAdapter(t, url).List(context.Background(), models.CollectionVisits)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrRemoteRejection)
}

func TestList_CanceledContextIsNotNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusOK, `[]`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAdapter(t, srv.URL).List(ctx, models.CollectionVisits)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNetwork)
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestCreate_SendsPayloadAndIdempotencyKey(t *testing.T) {
	payload := json.RawMessage(`{"date":"2024-05-01","client_id":1,"property_id":1,"plot_id":1}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/visits", r.URL.Path)
		assert.Equal(t, "key-42", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		got, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, string(payload), string(got))

		writeBody(t, w, http.StatusCreated, `{"visit":{"id":77,"date":"2024-05-01","client_id":1,"property_id":1,"plot_id":1}}`)
	}))
	defer srv.Close()

	ctx := utils.WithIdempotencyKey(context.Background(), "key-42")
	record, err := newTestAdapter(t, srv.URL).Create(ctx, models.CollectionVisits, payload)

	require.NoError(t, err)
	assert.Equal(t, int64(77), record.ID)
	visit, err := models.DecodeRecord[models.Visit](record)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", visit.Date)
}

func TestCreate_NoIdempotencyKeyWithoutContextValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		writeBody(t, w, http.StatusCreated, `{"id":3,"name":"Soja"}`)
	}))
	defer srv.Close()

	record, err := newTestAdapter(t, srv.URL).Create(context.Background(), models.CollectionClients, json.RawMessage(`{"name":"Soja"}`))

	require.NoError(t, err)
	assert.Equal(t, int64(3), record.ID)
}

func TestCreate_RemoteRejection(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		sentinel    error
		wantMessage string
		network     bool
	}{
		{name: "422 json message", status: http.StatusUnprocessableEntity, body: `{"message":"plot does not belong to property"}`, sentinel: ErrUnprocessable, wantMessage: "plot does not belong to property"},
		{name: "400 text body", status: http.StatusBadRequest, body: "bad date", sentinel: ErrBadRequest, wantMessage: "bad date"},
		{name: "401", status: http.StatusUnauthorized, body: `{"message":"token expired"}`, sentinel: ErrUnauthorized, wantMessage: "token expired"},
		{name: "409", status: http.StatusConflict, body: "", sentinel: ErrConflict, wantMessage: "Conflict"},
		{name: "500", status: http.StatusInternalServerError, body: "boom", sentinel: ErrInternalServerError, wantMessage: "boom"},
		{name: "502 is also a network error", status: http.StatusBadGateway, body: "", sentinel: ErrBadGateway, wantMessage: "Bad Gateway", network: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeBody(t, w, tt.status, tt.body)
			}))
			defer srv.Close()

			_, err := newTestAdapter(t, srv.URL).Create(context.Background(), models.CollectionVisits, json.RawMessage(`{}`))

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRemoteRejection)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.network, errors.Is(err, ErrNetwork))

			var remoteErr *RemoteError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, tt.status, remoteErr.StatusCode)
			assert.Equal(t, tt.wantMessage, remoteErr.Message)
		})
	}
}

// ── Update / Delete ──────────────────────────────────────────────────────────

func TestUpdate_EmptyBodyUsesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/clients/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	record, err := newTestAdapter(t, srv.URL).Update(context.Background(), models.CollectionClients, 9, json.RawMessage(`{"name":"Renamed"}`))

	require.NoError(t, err)
	assert.Equal(t, int64(9), record.ID)
	assert.JSONEq(t, `{"id":9,"name":"Renamed"}`, string(record.Data))
}

func TestUpdate_DecodesWrappedEntity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, http.StatusOK, `{"client":{"id":9,"name":"Renamed","city":"Rio Verde"}}`)
	}))
	defer srv.Close()

	record, err := newTestAdapter(t, srv.URL).Update(context.Background(), models.CollectionClients, 9, json.RawMessage(`{"name":"Renamed"}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"name":"Renamed","city":"Rio Verde"}`, string(record.Data))
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/opportunities/5", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := newTestAdapter(t, srv.URL).Delete(context.Background(), models.CollectionOpportunities, 5)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// ── UploadPhoto ──────────────────────────────────────────────────────────────

func TestUploadPhoto_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/visits/12/photos", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "ferrugem na folha", r.FormValue("caption"))

		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "leaf.jpg", header.Filename)
		assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)

		writeBody(t, w, http.StatusCreated, `{"photo":{"id":300,"visit_id":12,"caption":"ferrugem na folha","url":"/files/300.jpg"}}`)
	}))
	defer srv.Close()

	photo := models.Photo{VisitID: 12, Caption: "ferrugem na folha", FileName: "leaf.jpg", Data: []byte{0xff, 0xd8, 0xff}}
	record, err := newTestAdapter(t, srv.URL).UploadPhoto(context.Background(), 12, photo)

	require.NoError(t, err)
	assert.Equal(t, int64(300), record.ID)
	assert.Equal(t, models.CollectionPhotos, record.Collection)
}

// ── Ping ─────────────────────────────────────────────────────────────────────

func TestPing(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "healthy", status: http.StatusOK},
		{name: "no health route still reachable", status: http.StatusNotFound},
		{name: "gateway down", status: http.StatusServiceUnavailable, wantErr: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := newTestAdapter(t, srv.URL).Ping(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPing_NoHealthPath(t *testing.T) {
	a := newTestAdapter(t, "http://127.0.0.1:1")
	a.healthPath = ""

	assert.ErrorIs(t, a.Ping(context.Background()), ErrSourceUnavailable)
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.ErrorIs(t, newTestAdapter(t, url).Ping(context.Background()), ErrNetwork)
}
