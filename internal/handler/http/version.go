package http

import (
	"net/http"

	"github.com/MKhiriev/field-crm/internal/utils"
)

func (h *Handler) getVersion(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.buildInfo, http.StatusOK)
}
