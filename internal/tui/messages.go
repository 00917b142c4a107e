package tui

import (
	"github.com/MKhiriev/field-crm/models"
)

type statusLoadedMsg struct {
	status models.StatusResponse
}

type listLoadedMsg struct {
	result models.ListResult
	err    error
}

type queueLoadedMsg struct {
	writes []models.QueuedWrite
	err    error
}

type syncDoneMsg struct {
	result models.SyncResult
	err    error
}

type retryScheduledMsg struct {
	err error
}

type itemSavedMsg struct {
	result models.WriteResult
	err    error
}

type itemDeletedMsg struct {
	result models.WriteResult
	err    error
}

// eventMsg carries a notifier event; ok is false once the subscription is
// closed.
type eventMsg struct {
	event models.Event
	ok    bool
}

type copiedMsg struct{}

type clearStatusMsg struct{}
