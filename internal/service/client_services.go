package service

import (
	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/internal/utils"
	"github.com/MKhiriev/field-crm/internal/validators"
)

type ClientServices struct {
	RecordService RecordService
	QueueService  QueueService
	SyncService   SyncService
	WarmService   WarmService
	StatusService StatusService
	SyncJob       SyncJob
	Notifier      Notifier
	Connectivity  ConnectivitySwitch
}

func NewClientServices(storages *store.ClientStorages, serverAdapter adapter.ServerAdapter, conn ConnectivitySwitch, cfg config.ClientConfig, logger *logger.Logger) *ClientServices {
	notifier := NewNotifier(logger)
	syncSvc := NewClientSyncService(storages.Records, storages.Queue, serverAdapter, notifier, cfg.Workers.RetryBase, cfg.Workers.RetryMax)

	return &ClientServices{
		RecordService: NewClientRecordService(storages.Records, storages.Queue, serverAdapter, conn, validators.NewWriteValidator(), utils.NewUUIDGenerator(), notifier),
		QueueService:  NewClientQueueService(storages.Queue),
		SyncService:   syncSvc,
		WarmService:   NewClientWarmService(storages.Records, storages.Queue, serverAdapter),
		StatusService: NewClientStatusService(conn, syncSvc, storages.Queue, storages.Schema, cfg.App.APIToken),
		SyncJob:       NewClientSyncJob(syncSvc, conn, storages.Queue, notifier, cfg.Workers.RetryInterval, logger),
		Notifier:      notifier,
		Connectivity:  conn,
	}
}
