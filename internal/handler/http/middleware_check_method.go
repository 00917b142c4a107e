// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/field-crm/internal/utils"
)

var knownMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// CheckHTTPMethod returns the handler registered with
// [chi.Mux.MethodNotAllowed]. It answers 405 with an Allow header listing
// the methods the matched route accepts, resolving parameterised and mounted
// routes through [chi.Mux.Match]. When no method matches at all the answer
// is 404.
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, method := range knownMethods {
			if router.Match(chi.NewRouteContext(), method, r.URL.Path) {
				allowed = append(allowed, method)
			}
		}

		if len(allowed) == 0 {
			utils.WriteError(w, "", http.StatusNotFound)
			return
		}

		w.Header().Set("Allow", strings.Join(allowed, ", "))
		utils.WriteError(w, "method "+r.Method+" is not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, "no route for "+r.URL.Path, http.StatusNotFound)
}
