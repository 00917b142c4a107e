package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/models"
)

const (
	eventsBuffer       = 32
	eventsWriteTimeout = 5 * time.Second
)

// events streams [models.Event] values as JSON text messages. The first
// message is the current connectivity so the UI does not wait for a
// transition. Messages from the client are ignored.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*", "[::1]:*"},
	})
	if err != nil {
		log.Err(err).Str("func", "*Handler.events").Msg("websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	events, cancel := h.services.Notifier.Subscribe(eventsBuffer)
	defer cancel()

	ctx := conn.CloseRead(r.Context())
	log.Debug().Msg("event stream opened")

	status := h.services.StatusService.Status(ctx)
	if err = writeEvent(ctx, conn, models.Event{
		Type:         models.EventConnectivity,
		At:           time.Now().UTC(),
		Connectivity: &status.Connectivity,
	}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("event stream closed by client")
			return
		case <-h.closing:
			conn.Close(websocket.StatusGoingAway, "client shutting down")
			return
		case event, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err = writeEvent(ctx, conn, event); err != nil {
				log.Debug().Err(err).Msg("event stream write failed")
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, eventsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
