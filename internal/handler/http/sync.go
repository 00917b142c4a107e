// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/utils"
	"github.com/MKhiriev/field-crm/models"
)

// runSync runs a manual cycle and answers with its result once it is done.
// The cycle outlives a caller that hangs up, so replayed writes are always
// confirmed locally.
func (h *Handler) runSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	result, err := h.services.SyncService.Sync(context.WithoutCancel(r.Context()), models.TriggerManual)
	if err != nil {
		log.Err(err).Str("func", "*Handler.runSync").Msg("sync was not run")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) getQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	writes, err := h.services.QueueService.List(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getQueue").Msg("error listing pending writes")
		utils.WriteError(w, "error listing pending writes", statusFromError(err))
		return
	}
	if writes == nil {
		writes = []models.QueuedWrite{}
	}

	utils.WriteJSON(w, models.QueueResponse{Writes: writes, Length: len(writes)}, http.StatusOK)
}

// retryQueue clears the backoff of every queued write and schedules a cycle
// without waiting for it.
func (h *Handler) retryQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := h.services.QueueService.ResetBackoff(r.Context()); err != nil {
		log.Err(err).Str("func", "*Handler.retryQueue").Msg("error resetting backoff")
		utils.WriteError(w, "error resetting backoff", statusFromError(err))
		return
	}
	h.services.SyncJob.Trigger(models.TriggerManual)

	w.WriteHeader(http.StatusAccepted)
}
