package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Flag names registered by [RegisterFlags].
const (
	flagConfig            = "config"
	flagAPIToken          = "api-token"
	flagDSN               = "dsn"
	flagAPIAddress        = "api"
	flagRequestTimeout    = "request-timeout"
	flagHealthPath        = "health-path"
	flagListen            = "listen"
	flagGRPCListen        = "grpc-listen"
	flagProbeInterval     = "probe-interval"
	flagInitialCheckDelay = "initial-check-delay"
	flagRetryInterval     = "retry-interval"
	flagAssetsDir         = "assets-dir"
	flagWatchAssets       = "watch-assets"
	flagLogPath           = "log-file"
	flagLogLevel          = "log-level"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// RegisterFlags defines every configuration flag on fs. Only flags that were
// explicitly set take part in the merge.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(flagConfig, "c", "", "config file path (.json, .yaml, .toml)")
	fs.String(flagAPIToken, "", "bearer token for the remote API")
	fs.StringP(flagDSN, "d", "", "local SQLite database DSN")
	fs.StringP(flagAPIAddress, "a", "", "remote API base URL")
	fs.Duration(flagRequestTimeout, 0, "remote request timeout (e.g. 15s)")
	fs.String(flagHealthPath, "", "remote health probe path")
	fs.Var(&NetAddress{}, flagListen, "local HTTP listen address host:port")
	fs.Var(&NetAddress{}, flagGRPCListen, "local gRPC health listen address host:port")
	fs.Duration(flagProbeInterval, 0, "connectivity probe interval")
	fs.Duration(flagInitialCheckDelay, 0, "delay before the first connectivity check")
	fs.Duration(flagRetryInterval, 0, "interval of queued write retries while online")
	fs.String(flagAssetsDir, "", "directory overriding the embedded offline shell")
	fs.Bool(flagWatchAssets, false, "reload offline shell assets on change")
	fs.String(flagLogPath, "", "log file path (rotated)")
	fs.String(flagLogLevel, "", "log level")
}

func parseFlags(fs *pflag.FlagSet) (*StructuredConfig, error) {
	cfg := &StructuredConfig{}
	var errs []error

	str := func(name string, dst *string) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	str(flagConfig, &cfg.ConfigFilePath)
	str(flagAPIToken, &cfg.App.APIToken)
	str(flagDSN, &cfg.Storage.DB.DSN)
	str(flagAPIAddress, &cfg.Adapter.HTTPAddress)
	str(flagHealthPath, &cfg.Adapter.HealthPath)
	str(flagListen, &cfg.Server.HTTPAddress)
	str(flagGRPCListen, &cfg.Server.GRPCAddress)
	str(flagAssetsDir, &cfg.Shell.AssetsDir)
	str(flagLogPath, &cfg.Log.Path)
	str(flagLogLevel, &cfg.Log.Level)

	durations := map[string]*time.Duration{
		flagRequestTimeout:    &cfg.Adapter.RequestTimeout,
		flagProbeInterval:     &cfg.Workers.ProbeInterval,
		flagInitialCheckDelay: &cfg.Workers.InitialCheckDelay,
		flagRetryInterval:     &cfg.Workers.RetryInterval,
	}
	for name, dst := range durations {
		if f := fs.Lookup(name); f == nil || !f.Changed {
			continue
		}
		d, err := fs.GetDuration(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("flag --%s: %w", name, err))
			continue
		}
		*dst = d
	}

	if f := fs.Lookup(flagWatchAssets); f != nil && f.Changed {
		watch, err := fs.GetBool(flagWatchAssets)
		if err != nil {
			errs = append(errs, fmt.Errorf("flag --%s: %w", flagWatchAssets, err))
		}
		cfg.Shell.Watch = watch
	}

	return cfg, errors.Join(errs...)
}

// String returns a canonical host:port string for a NetAddress.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
