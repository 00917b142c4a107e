package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	// websocket upgrade needs the raw connection, so no compression
	router.Get("/api/events", h.events)

	router.Group(func(r chi.Router) {
		r.Use(withGZip)

		r.Route("/api", func(r chi.Router) {
			r.Get("/status", h.getStatus)
			r.Get("/version", h.getVersion)
			r.Post("/sync", h.runSync)
			if h.services.Connectivity != nil {
				r.Put("/connectivity", h.setConnectivity)
			}

			r.Get("/queue", h.getQueue)
			r.Post("/queue/retry", h.retryQueue)

			r.Post("/visits/{id}/photos", h.uploadPhoto)

			r.Get("/{collection}", h.listRecords)
			r.Post("/{collection}", h.createRecord)
			r.Get("/{collection}/{id}", h.getRecord)
			r.Put("/{collection}/{id}", h.updateRecord)
			r.Delete("/{collection}/{id}", h.deleteRecord)
		})

		if h.shell != nil {
			r.Get("/*", h.shell.ServeHTTP)
			r.Head("/*", h.shell.ServeHTTP)
		}
	})

	router.NotFound(h.notFound)
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
