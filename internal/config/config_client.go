package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	// APIToken is the bearer token sent to the remote API. May be empty when
	// the remote API is open.
	APIToken string
}

// ClientAdapter holds settings used by the remote API adapter.
type ClientAdapter struct {
	// HTTPAddress is the remote API base URL.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
	// HealthPath is probed by the connectivity monitor.
	HealthPath string
}

// ClientDB contains local database connection settings.
type ClientDB struct {
	// DSN is the SQLite connection string.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientServer holds the local listeners. Empty addresses disable a listener.
type ClientServer struct {
	HTTPAddress     string
	GRPCAddress     string
	ShutdownTimeout time.Duration
}

// ClientWorkers contains background worker settings.
type ClientWorkers struct {
	ProbeInterval     time.Duration
	InitialCheckDelay time.Duration
	DialTimeout       time.Duration
	RetryInterval     time.Duration
	RetryBase         time.Duration
	RetryMax          time.Duration
}

// ClientShell holds offline shell settings.
type ClientShell struct {
	AssetsDir string
	Watch     bool
}

// ClientLog holds log destination settings.
type ClientLog struct {
	Path  string
	Level string
}

// ClientConfig is the validated runtime configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Server  ClientServer
	Workers ClientWorkers
	Shell   ClientShell
	Log     ClientLog
}

// GetClientConfig builds and validates the client configuration. fs is the
// flag set populated by [RegisterFlags]; nil skips flags.
func GetClientConfig(fs *pflag.FlagSet) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(fs)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the merged structured config to the client view
// without validating it.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{APIToken: cfg.App.APIToken},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			HealthPath:     cfg.Adapter.HealthPath,
		},
		Storage: ClientStorage{DB: ClientDB{DSN: cfg.Storage.DB.DSN}},
		Server: ClientServer{
			HTTPAddress:     cfg.Server.HTTPAddress,
			GRPCAddress:     cfg.Server.GRPCAddress,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		},
		Workers: ClientWorkers{
			ProbeInterval:     cfg.Workers.ProbeInterval,
			InitialCheckDelay: cfg.Workers.InitialCheckDelay,
			DialTimeout:       cfg.Workers.DialTimeout,
			RetryInterval:     cfg.Workers.RetryInterval,
			RetryBase:         cfg.Workers.RetryBase,
			RetryMax:          cfg.Workers.RetryMax,
		},
		Shell: ClientShell{AssetsDir: cfg.Shell.AssetsDir, Watch: cfg.Shell.Watch},
		Log:   ClientLog{Path: cfg.Log.Path, Level: cfg.Log.Level},
	}
}
