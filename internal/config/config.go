// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"

	"github.com/spf13/pflag"
)

// StructuredConfig is the top-level configuration container. It is populated
// by merging defaults, an optional config file, environment variables and
// command-line flags.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds credentials used against the remote CRM API.
	App App `envPrefix:"APP_"`

	// Storage holds the local SQLite settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds the remote API address and request settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Server holds the local HTTP and gRPC listen addresses.
	Server Server `envPrefix:"SERVER_"`

	// Workers holds connectivity polling and retry settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// Shell holds offline shell asset settings.
	Shell Shell `envPrefix:"SHELL_"`

	// Log holds log destination settings.
	Log Log `envPrefix:"LOG_"`

	// ConfigFilePath is the optional path to a JSON, YAML or TOML config file.
	// Env: FIELDCRM_CONFIG, flag: --config / -c
	ConfigFilePath string `env:"CONFIG"`
}

// App holds application-level settings.
type App struct {
	// APIToken is the bearer token sent to the remote API.
	// Env: FIELDCRM_APP_API_TOKEN
	APIToken string `env:"API_TOKEN"`
}

// Storage groups the local persistence settings.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds the SQLite data source.
type DB struct {
	// DSN is the SQLite file path or URI (e.g. "file:fieldcrm.db?_busy_timeout=5000").
	// Env: FIELDCRM_STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Adapter holds the remote CRM API settings.
type Adapter struct {
	// HTTPAddress is the base URL of the remote API (e.g. "https://crm.example.com/api").
	// Env: FIELDCRM_ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every outbound request.
	// Env: FIELDCRM_ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// HealthPath is probed by the connectivity monitor.
	// Env: FIELDCRM_ADAPTER_HEALTH_PATH
	HealthPath string `env:"HEALTH_PATH"`
}

// Server holds the local listener settings.
type Server struct {
	// HTTPAddress serves the local API and offline shell. Empty disables it.
	// Env: FIELDCRM_SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress serves grpc.health.v1. Empty disables it.
	// Env: FIELDCRM_SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// ShutdownTimeout bounds graceful shutdown.
	// Env: FIELDCRM_SERVER_SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Workers holds background job settings.
type Workers struct {
	// ProbeInterval is the connectivity polling period.
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// InitialCheckDelay is the delay before the first corrective probe after
	// start-up; the monitor starts optimistic.
	InitialCheckDelay time.Duration `env:"INITIAL_CHECK_DELAY"`

	// DialTimeout bounds the TCP fallback probe.
	DialTimeout time.Duration `env:"DIAL_TIMEOUT"`

	// RetryInterval is the period of backoff-honouring retry cycles while
	// online with a non-empty queue.
	RetryInterval time.Duration `env:"RETRY_INTERVAL"`

	// RetryBase and RetryMax bound the per-write exponential backoff.
	RetryBase time.Duration `env:"RETRY_BASE"`
	RetryMax  time.Duration `env:"RETRY_MAX"`
}

// Shell holds offline shell settings.
type Shell struct {
	// AssetsDir overrides the embedded shell assets with files from disk.
	AssetsDir string `env:"ASSETS_DIR"`

	// Watch reloads assets from AssetsDir when they change.
	Watch bool `env:"WATCH"`
}

// Log holds logging settings.
type Log struct {
	// Path is the rotating log file. Empty logs to stderr.
	Path string `env:"PATH"`

	// Level is a zerolog level name ("debug", "info", ...).
	Level string `env:"LEVEL"`
}

// GetStructuredConfig loads and merges the configuration from all sources.
// fs is the flag set populated by [RegisterFlags]; nil skips flags.
func GetStructuredConfig(fs *pflag.FlagSet) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(fs).
		withFile().
		build()
}
