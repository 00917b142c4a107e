package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type structuredFileConfig struct {
	App struct {
		APIToken string `json:"api_token" yaml:"api_token" toml:"api_token"`
	} `json:"app" yaml:"app" toml:"app"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" yaml:"dsn" toml:"dsn"`
		} `json:"db" yaml:"db" toml:"db"`
	} `json:"storage" yaml:"storage" toml:"storage"`

	Adapter struct {
		HTTPAddress    string   `json:"address" yaml:"address" toml:"address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
		HealthPath     string   `json:"health_path" yaml:"health_path" toml:"health_path"`
	} `json:"adapter" yaml:"adapter" toml:"adapter"`

	Server struct {
		HTTPAddress     string   `json:"http_address" yaml:"http_address" toml:"http_address"`
		GRPCAddress     string   `json:"grpc_address" yaml:"grpc_address" toml:"grpc_address"`
		ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	} `json:"server" yaml:"server" toml:"server"`

	Workers struct {
		ProbeInterval     Duration `json:"probe_interval" yaml:"probe_interval" toml:"probe_interval"`
		InitialCheckDelay Duration `json:"initial_check_delay" yaml:"initial_check_delay" toml:"initial_check_delay"`
		DialTimeout       Duration `json:"dial_timeout" yaml:"dial_timeout" toml:"dial_timeout"`
		RetryInterval     Duration `json:"retry_interval" yaml:"retry_interval" toml:"retry_interval"`
		RetryBase         Duration `json:"retry_base" yaml:"retry_base" toml:"retry_base"`
		RetryMax          Duration `json:"retry_max" yaml:"retry_max" toml:"retry_max"`
	} `json:"workers" yaml:"workers" toml:"workers"`

	Shell struct {
		AssetsDir string `json:"assets_dir" yaml:"assets_dir" toml:"assets_dir"`
		Watch     bool   `json:"watch" yaml:"watch" toml:"watch"`
	} `json:"shell" yaml:"shell" toml:"shell"`

	Log struct {
		Path  string `json:"path" yaml:"path" toml:"path"`
		Level string `json:"level" yaml:"level" toml:"level"`
	} `json:"log" yaml:"log" toml:"log"`
}

func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fileCfg structuredFileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &fileCfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fileCfg)
	case ".toml":
		err = toml.Unmarshal(data, &fileCfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConfigFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	return fileCfg.toStructured(), nil
}

func (f structuredFileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App:     App{APIToken: f.App.APIToken},
		Storage: Storage{DB: DB{DSN: f.Storage.DB.DSN}},
		Adapter: Adapter{
			HTTPAddress:    f.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(f.Adapter.RequestTimeout),
			HealthPath:     f.Adapter.HealthPath,
		},
		Server: Server{
			HTTPAddress:     f.Server.HTTPAddress,
			GRPCAddress:     f.Server.GRPCAddress,
			ShutdownTimeout: time.Duration(f.Server.ShutdownTimeout),
		},
		Workers: Workers{
			ProbeInterval:     time.Duration(f.Workers.ProbeInterval),
			InitialCheckDelay: time.Duration(f.Workers.InitialCheckDelay),
			DialTimeout:       time.Duration(f.Workers.DialTimeout),
			RetryInterval:     time.Duration(f.Workers.RetryInterval),
			RetryBase:         time.Duration(f.Workers.RetryBase),
			RetryMax:          time.Duration(f.Workers.RetryMax),
		},
		Shell: Shell{AssetsDir: f.Shell.AssetsDir, Watch: f.Shell.Watch},
		Log:   Log{Path: f.Log.Path, Level: f.Log.Level},
	}
}

// Duration is a wrapper around time.Duration that decodes strings like "1h"
// or "30s" from JSON, YAML and TOML. JSON and YAML also accept nanoseconds as
// a plain number.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		return d.UnmarshalText([]byte(value))
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var n int64
	if node.Tag == "!!int" {
		if err := node.Decode(&n); err != nil {
			return err
		}
		*d = Duration(n)
		return nil
	}
	return d.UnmarshalText([]byte(node.Value))
}

// UnmarshalText implements encoding.TextUnmarshaler; used by TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	tmp, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}
