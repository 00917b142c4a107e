package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/utils"
	"github.com/MKhiriev/field-crm/models"
)

// setConnectivity pins the monitor online or offline, or hands it back to
// the probes with "auto". The answer is the resulting state.
func (h *Handler) setConnectivity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	body, err := readJSONBody(w, r)
	if err != nil {
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}
	var req models.ConnectivityRequest
	if err = json.Unmarshal(body, &req); err != nil {
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	conn := h.services.Connectivity
	var state models.ConnectivityState
	switch req.Mode {
	case models.ConnectivityOnline:
		conn.Force(r.Context(), true)
		state = conn.Status()
	case models.ConnectivityOffline:
		conn.Force(r.Context(), false)
		state = conn.Status()
	case models.ConnectivityAuto:
		state = conn.Release(r.Context())
	default:
		utils.WriteError(w, ErrUnknownMode.Error(), statusFromError(ErrUnknownMode))
		return
	}

	log.Info().Str("func", "*Handler.setConnectivity").Str("mode", req.Mode).Bool("connected", state.Connected).Msg("connectivity switched")
	utils.WriteJSON(w, state, http.StatusOK)
}
