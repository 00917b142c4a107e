package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/internal/validators"
)

type errorStatus struct {
	target error
	status int
}

// errorStatusTable is checked in order; the first match wins. The more
// specific storage errors come before ErrStorage which wraps them.
var errorStatusTable = []errorStatus{
	{ErrInvalidJSON, http.StatusBadRequest},
	{ErrInvalidRecordID, http.StatusBadRequest},
	{ErrNoPhotoProvided, http.StatusBadRequest},
	{ErrPhotoTooLarge, http.StatusRequestEntityTooLarge},
	{ErrUnknownMode, http.StatusBadRequest},

	{validators.ErrValidation, http.StatusBadRequest},

	{service.ErrUnknownCollection, http.StatusNotFound},
	{store.ErrUnknownCollection, http.StatusNotFound},
	{store.ErrRecordNotFound, http.StatusNotFound},
	{service.ErrSyncInProgress, http.StatusConflict},

	{adapter.ErrNetwork, http.StatusServiceUnavailable},

	{store.ErrStorageUnavailable, http.StatusServiceUnavailable},
	{store.ErrStorageQuotaExceeded, http.StatusInsufficientStorage},
	{store.ErrStorage, http.StatusInternalServerError},
}

// statusFromError maps err to the status of the local API answer. Rejections
// of the remote API keep the remote status unless it is a gateway error.
func statusFromError(err error) int {
	var remote *adapter.RemoteError
	if errors.As(err, &remote) && !errors.Is(remote, adapter.ErrNetwork) {
		return remote.StatusCode
	}

	for _, e := range errorStatusTable {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// messageFromError is the message put in the error body. Remote rejections
// carry the remote message so field validation errors reach the user.
func messageFromError(err error) string {
	var remote *adapter.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return err.Error()
}
