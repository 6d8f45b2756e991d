package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"
)

type StatsResponse struct {
	Profiles int    `json:"profiles"`
	Items    int    `json:"items"`
	Summary  string `json:"summary"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *Handlers) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.StatsService.Stats(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, StatsResponse{
		Profiles: stats.Profiles,
		Items:    stats.Items,
		Summary:  humanize.Comma(int64(stats.Items)) + " items in " + humanize.Comma(int64(stats.Profiles)) + " profiles",
	}, http.StatusOK)
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		WriteSuccess(w, HealthResponse{Status: "ok", Database: "memory"}, http.StatusOK)
		return
	}

	if err := h.DB.HealthCheck(r.Context()); err != nil {
		h.Log.Error(r.Context(), "проверка БД не пройдена", "error", err)
		WriteSuccess(w, HealthResponse{Status: "unavailable", Database: "down"}, http.StatusServiceUnavailable)
		return
	}

	WriteSuccess(w, HealthResponse{Status: "ok", Database: "up"}, http.StatusOK)
}
