package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/handler"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/network"
	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/models"
)

func newTestHandlers(t *testing.T, cfg config.ClientServer) *handler.Handlers {
	t.Helper()
	monitor := network.NewMonitor(nil, time.Hour, time.Hour, logger.Nop())
	h, err := handler.NewHandlers(&service.ClientServices{}, monitor, nil, models.NewAppBuildInfo("0.9.0", "", ""), cfg, logger.Nop())
	require.NoError(t, err)
	return h
}

func TestNewServers_NothingConfigured(t *testing.T) {
	_, err := NewServers(&handler.Handlers{}, config.ClientServer{}, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)
}

func TestNewServers_DefaultShutdownTimeout(t *testing.T) {
	cfg := config.ClientServer{HTTPAddress: "127.0.0.1:0"}
	s, err := NewServers(newTestHandlers(t, cfg), cfg, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, defaultShutdownTimeout, s.shutdownTimeout)
	assert.Equal(t, []string{""}, s.Addrs())
}

func TestServers_RunAndShutdown(t *testing.T) {
	cfg := config.ClientServer{HTTPAddress: "127.0.0.1:0", GRPCAddress: "127.0.0.1:0", ShutdownTimeout: 2 * time.Second}
	s, err := NewServers(newTestHandlers(t, cfg), cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Listen())

	addrs := s.Addrs()
	require.Len(t, addrs, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// HTTP
	resp, err := http.Get("http://" + addrs[0] + "/api/version")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"version":"0.9.0"`)

	// gRPC health
	conn, err := grpc.NewClient(addrs[1], grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	checkCtx, checkCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer checkCancel()
	hc, err := healthpb.NewHealthClient(conn).Check(checkCtx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.GetStatus())

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("servers did not shut down")
	}

	_, err = net.DialTimeout("tcp", addrs[0], time.Second)
	assert.Error(t, err, "http listener must be closed")
}

func TestServers_ListenFailureReleasesBound(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := config.ClientServer{HTTPAddress: "127.0.0.1:0", GRPCAddress: busy.Addr().String()}
	s, err := NewServers(newTestHandlers(t, cfg), cfg, logger.Nop())
	require.NoError(t, err)

	err = s.Listen()
	require.ErrorIs(t, err, ErrListen)

	httpAddr := s.Addrs()[0]
	require.NotEmpty(t, httpAddr)
	_, err = net.DialTimeout("tcp", httpAddr, time.Second)
	assert.Error(t, err, "bound http listener must be released")
}
