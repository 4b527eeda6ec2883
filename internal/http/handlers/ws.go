package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
)

const (
	jobStreamPollInterval = 500 * time.Millisecond
	jobStreamMaxDuration  = 5 * time.Minute
	wsWriteTimeout        = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client runs on a different origin; CORS policy is
	// enforced by the middleware chain for the HTTP surface, and the
	// stream carries no mutations.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// JobEvents upgrades to a websocket and pushes the job record every time
// its state changes, closing once the job reaches a terminal state. It is
// a convenience over polling; the polling endpoint stays authoritative.
func (a *App) JobEvents(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if _, err := a.Reports.Job(r.Context(), jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "unknown job id")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("handlers: websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Swallow client messages so control frames keep being processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(jobStreamPollInterval)
	defer ticker.Stop()
	deadline := time.After(jobStreamMaxDuration)

	var lastState domain.JobState
	for {
		select {
		case <-r.Context().Done():
			return
		case <-deadline:
			return
		case <-ticker.C:
			job, err := a.Reports.Job(r.Context(), jobID)
			if err != nil {
				// The record expired mid-stream; nothing more to report.
				return
			}
			if job.State == lastState {
				continue
			}
			lastState = job.State
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(job); err != nil {
				return
			}
			if job.State.Terminal() {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(job.State)),
					time.Now().Add(wsWriteTimeout))
				return
			}
		}
	}
}
