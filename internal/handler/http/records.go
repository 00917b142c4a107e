package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/utils"
	"github.com/MKhiriev/field-crm/models"
)

const maxRecordBodySize = 1 << 20

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	result, err := h.services.RecordService.List(r.Context(), collection)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listRecords").Str("collection", collection).Msg("error listing records")
		utils.WriteError(w, messageFromError(err), statusFromError(err))
		return
	}
	if result.Stale {
		w.Header().Set("Warning", `110 - "Response is Stale"`)
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	id, err := recordIDParam(r)
	if err != nil {
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	record, err := h.services.RecordService.Get(r.Context(), collection, id)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getRecord").Str("collection", collection).Int64("id", id).Msg("error getting record")
		utils.WriteError(w, messageFromError(err), statusFromError(err))
		return
	}

	utils.WriteJSON(w, record, http.StatusOK)
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	payload, err := readJSONBody(w, r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createRecord").Msg("invalid request body")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	result, err := h.services.RecordService.Create(r.Context(), collection, payload)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createRecord").Str("collection", collection).Msg("error creating record")
		utils.WriteError(w, messageFromError(err), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, writeStatus(result, http.StatusCreated))
}

func (h *Handler) updateRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	id, err := recordIDParam(r)
	if err != nil {
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}
	payload, err := readJSONBody(w, r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateRecord").Msg("invalid request body")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	result, err := h.services.RecordService.Update(r.Context(), collection, id, payload)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateRecord").Str("collection", collection).Int64("id", id).Msg("error updating record")
		utils.WriteError(w, messageFromError(err), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, writeStatus(result, http.StatusOK))
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	id, err := recordIDParam(r)
	if err != nil {
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	result, err := h.services.RecordService.Delete(r.Context(), collection, id)
	if err != nil {
		log.Err(err).Str("func", "*Handler.deleteRecord").Str("collection", collection).Int64("id", id).Msg("error deleting record")
		utils.WriteError(w, messageFromError(err), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, writeStatus(result, http.StatusOK))
}

// writeStatus is 202 for writes that were queued instead of confirmed.
func writeStatus(result models.WriteResult, confirmed int) int {
	if result.Queued {
		return http.StatusAccepted
	}
	return confirmed
}

// recordIDParam parses {id}. Negative ids address records created offline.
func recordIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRecordID, raw)
	}
	return id, nil
}

func readJSONBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidJSON, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(body), nil
}
