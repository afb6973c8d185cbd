package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Storage is the subset of the persistence layer used by the ops endpoints.
type Storage interface {
	Ping() error
	CountByClass() (map[string]int, error)
}

type Handler struct {
	storage Storage
}

func NewHandler(storage Storage) *Handler {
	return &Handler{
		storage: storage,
	}
}

// Router builds the ops router with health and statistics endpoints.
func (h *Handler) Router() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Get("/healthz", h.Healthz)
	router.Get("/stats", h.Stats)
	return router
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(); err != nil {
		logrus.WithError(err).Error("Health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.storage.CountByClass()
	if err != nil {
		logrus.WithError(err).Error("Failed to collect statistics")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(map[string]interface{}{
		"total":   total,
		"classes": counts,
	}); err != nil {
		logrus.WithError(err).Error("Failed to encode statistics")
	}
}
