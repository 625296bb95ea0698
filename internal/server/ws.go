package server

import (
	"net/http"

	"github.com/desertthunder/driverelay/internal/shared"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The SSE endpoint is open cross-origin via CORS; mirror that here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamWS serves the same per-session progress events as [Service.Stream]
// over a WebSocket, one JSON text message per event.
func (s *Service) StreamWS(w http.ResponseWriter, r *http.Request) {
	uploadID := r.URL.Query().Get("upload_id")
	if uploadID == "" {
		s.writeError(w, http.StatusBadRequest, "missing upload_id")
		return
	}

	sess, ok := s.registry.Get(uploadID)
	if !ok {
		s.writeError(w, http.StatusBadRequest, shared.ErrSessionNotFound.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "upload_id", uploadID, "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("upload_id", uploadID)
	logger.Info("progress websocket opened")

	for {
		event, err := sess.Queue().Pop(r.Context())
		if err != nil {
			logger.Info("progress websocket abandoned")
			return
		}

		if err := conn.WriteJSON(event); err != nil {
			logger.Info("progress websocket write failed", "error", err)
			return
		}

		if event.Terminal() {
			s.registry.Remove(uploadID)
			logger.Info("progress websocket complete", "event", event.Kind)
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
