package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
	"github.com/Logged1n/SharpBuy-sub000/internal/report"
)

// App carries the handler dependencies.
type App struct {
	Reports  *report.Service
	Data     domain.ReportDataRepository // nil when no database is configured
	Logger   zerolog.Logger
	validate *validator.Validate
}

// NewApp builds the handler container.
func NewApp(reports *report.Service, data domain.ReportDataRepository, logger zerolog.Logger) *App {
	return &App{
		Reports:  reports,
		Data:     data,
		Logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
