package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/driverelay/internal/shared"
)

// Stream serves the Server-Sent Events progress stream for one session.
//
// Frames are emitted as `data: <json>` until a terminal event, however long
// the wait between events. The session is evicted once its terminal event
// has been delivered.
func (s *Service) Stream(w http.ResponseWriter, r *http.Request) {
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

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger := s.logger.With("upload_id", uploadID)
	logger.Info("progress stream opened")

	for {
		event, err := sess.Queue().Pop(r.Context())
		if err != nil {
			// Client went away; the transfer keeps running without a viewer.
			logger.Info("progress stream abandoned")
			return
		}

		payload, err := json.Marshal(event)
		if err != nil {
			logger.Error("failed to marshal event", "error", err)
			continue
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			logger.Info("progress stream write failed", "error", err)
			return
		}
		flusher.Flush()

		if event.Terminal() {
			s.registry.Remove(uploadID)
			logger.Info("progress stream complete", "event", event.Kind)
			return
		}
	}
}
