package network

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/field-crm/internal/adapter"
)

// Source names reported in [models.ConnectivityState].
const (
	SourceHTTPProbe = "http-probe"
	SourceTCPDial   = "tcp-dial"
	SourceManual    = "manual"
	SourceAssumed   = "assumed"
)

// Pinger reports whether a connectivity signal says the remote API is
// reachable. adapter.ServerAdapter satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Source is a named connectivity signal.
type Source struct {
	Name string
	Pinger
}

// DialSource is the fallback signal: it opens and closes a TCP connection to
// the API host.
type DialSource struct {
	Address string
	Timeout time.Duration
}

// NewDialSource derives host:port from the remote API address. The port
// defaults to 80 or 443 by scheme.
func NewDialSource(apiAddress string, timeout time.Duration) (*DialSource, error) {
	addr, err := dialAddress(apiAddress)
	if err != nil {
		return nil, err
	}
	return &DialSource{Address: addr, Timeout: timeout}, nil
}

func dialAddress(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty api address")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse api address: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("api address %q has no host", raw)
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// Ping implements [Pinger].
func (d *DialSource) Ping(ctx context.Context) error {
	if d.Address == "" {
		return adapter.ErrSourceUnavailable
	}

	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Address)
	if err != nil {
		return fmt.Errorf("dial %s: %w: %w", d.Address, adapter.ErrNetwork, err)
	}
	return conn.Close()
}
