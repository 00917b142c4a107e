package http

import (
	"net/http"

	"github.com/MKhiriev/field-crm/internal/utils"
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	status := h.services.StatusService.Status(r.Context())
	utils.WriteJSON(w, status, http.StatusOK)
}
