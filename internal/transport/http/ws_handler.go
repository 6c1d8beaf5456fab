package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"pairquiz-service/internal/app"
	"pairquiz-service/internal/domain"
)

// WSHandler streams session snapshots to clients that prefer a push channel
// over polling the fetch endpoint. The state machine itself stays
// transport-agnostic; this is a projection of the same snapshots.
type WSHandler struct {
	service  *app.PairService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.PairService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string                 `json:"type"`
	Payload domain.SessionSnapshot `json:"payload"`
}

// ServeWS upgrades the request and pushes a snapshot on every session mutation.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	updates, cancel, err := h.service.Watch(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: "session", Payload: snap}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
			if snap.Status.Terminal() {
				return
			}
		case <-closed:
			return
		}
	}
}
