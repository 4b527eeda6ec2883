package handlers

import (
	"net/http"
	"time"
)

var startedAt = time.Now()

// Health is a liveness probe; it touches no collaborator.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(startedAt).Seconds()),
	})
}
