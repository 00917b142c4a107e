package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/handler"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/network"
	"github.com/MKhiriev/field-crm/internal/server"
	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/internal/shell"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/internal/workers"
	"github.com/MKhiriev/field-crm/models"
)

type App struct {
	cfg       config.ClientConfig
	buildInfo models.AppBuildInfo

	storages *store.ClientStorages
	adapter  adapter.ServerAdapter
	monitor  *network.Monitor
	services *service.ClientServices

	logger *logger.Logger
}

// NewApp opens the local store and wires the services. The store is the only
// resource held before Serve; Close releases it.
func NewApp(ctx context.Context, cfg *config.ClientConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, cfg.App, logger)
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	sources := []network.Source{{Name: network.SourceHTTPProbe, Pinger: serverAdapter}}
	dial, err := network.NewDialSource(cfg.Adapter.HTTPAddress, cfg.Workers.DialTimeout)
	if err != nil {
		logger.Warn().Err(err).Msg("tcp dial connectivity source disabled")
	} else {
		sources = append(sources, network.Source{Name: network.SourceTCPDial, Pinger: dial})
	}
	monitor := network.NewMonitor(sources, cfg.Workers.ProbeInterval, cfg.Workers.InitialCheckDelay, logger)

	return &App{
		cfg:       *cfg,
		buildInfo: buildInfo,
		storages:  storages,
		adapter:   serverAdapter,
		monitor:   monitor,
		services:  service.NewClientServices(storages, serverAdapter, monitor, *cfg, logger),
		logger:    logger,
	}, nil
}

func (a *App) Services() *service.ClientServices { return a.services }
func (a *App) Monitor() *network.Monitor          { return a.monitor }
func (a *App) BuildInfo() models.AppBuildInfo     { return a.buildInfo }

// Serve warms the cache in the background, starts the workers and serves
// the local listeners until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	ctx = a.logger.WithContext(ctx)

	var (
		shellHandler http.Handler
		watcher      *shell.Watcher
	)
	if a.cfg.Server.HTTPAddress != "" {
		sh, err := shell.New(a.cfg.Shell.AssetsDir, a.logger)
		if err != nil {
			return fmt.Errorf("load offline shell: %w", err)
		}
		shellHandler = sh
		if a.cfg.Shell.Watch {
			watcher = shell.NewWatcher(sh, a.logger)
		}
	}

	handlers, err := handler.NewHandlers(a.services, a.monitor, shellHandler, a.buildInfo, a.cfg.Server, a.logger)
	if err != nil {
		return fmt.Errorf("create handlers: %w", err)
	}
	servers, err := server.NewServers(handlers, a.cfg.Server, a.logger)
	if err != nil {
		return fmt.Errorf("create servers: %w", err)
	}
	if err = servers.Listen(); err != nil {
		return err
	}

	bg := a.workers(watcher)
	bg.Start(ctx)
	defer bg.Stop()

	go a.Warm(ctx)

	return servers.Run(ctx)
}

// StartWorkers runs the background workers without listeners, for the
// terminal UI. The returned function stops them.
func (a *App) StartWorkers(ctx context.Context) (stop func()) {
	bg := a.workers(nil)
	bg.Start(a.logger.WithContext(ctx))
	return bg.Stop
}

func (a *App) workers(watcher *shell.Watcher) *workers.Workers {
	list := []workers.Worker{a.monitor, a.services.SyncJob}
	if watcher != nil {
		list = append(list, watcher)
	}
	return workers.NewWorkers(list...)
}

func (a *App) Warm(ctx context.Context) models.WarmReport {
	ctx = a.logger.WithContext(ctx)

	report := a.services.WarmService.Warm(ctx)
	for name, reason := range report.Failed {
		a.logger.Warn().Str("collection", name).Str("reason", reason).Msg("collection not preloaded")
	}
	a.logger.Info().Int("warmed", len(report.Warmed)).Int("failed", len(report.Failed)).Msg("cache warm finished")
	return report
}

// Sync checks connectivity once so a one-shot command does not trust the
// optimistic initial state, then runs a manual cycle.
func (a *App) Sync(ctx context.Context) (models.SyncResult, error) {
	ctx = a.logger.WithContext(ctx)

	if state := a.monitor.Check(ctx); !state.Connected {
		a.logger.Warn().Str("source", state.Source).Msg("remote api unreachable, sync will only report the queue")
	}
	return a.services.SyncService.Sync(ctx, models.TriggerManual)
}

func (a *App) Close() error {
	if err := a.storages.Close(); err != nil {
		return errors.Join(store.ErrStorage, err)
	}
	return nil
}
