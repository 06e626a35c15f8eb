package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/model"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/store"
)

// FlagHandler serves the extra-flag gallery and the aggregate stats endpoint.
type FlagHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewFlagHandler(st store.Store, logger *zap.Logger) *FlagHandler {
	return &FlagHandler{store: st, logger: logger.Named("flags")}
}

// RegisterRoutes registers the routes for this handler.
func (h *FlagHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.HandleFunc("/v1/flags", h.handleList).Methods("GET")
	router.HandleFunc("/v1/stats", h.handleStats).Methods("GET")
}

func (h *FlagHandler) handleList(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	filter := store.FlagFilter{}

	if category := q.Get("category"); category != "" && category != "all" {
		if !validCategory(category) {
			http.Error(w, "Unknown category", http.StatusBadRequest)
			return
		}
		filter.Category = category
	}
	if raw := q.Get("country_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			http.Error(w, "Invalid country_id", http.StatusBadRequest)
			return
		}
		cid := uint(id)
		filter.CountryID = &cid
	}

	flags, err := h.store.ListFlags(req.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list flags", zap.Error(err))
		http.Error(w, "Failed to list flags", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"flags": flags,
		"count": len(flags),
	})
}

func (h *FlagHandler) handleStats(w http.ResponseWriter, req *http.Request) {
	stats, err := h.store.GetStats(req.Context())
	if err != nil {
		h.logger.Error("failed to aggregate stats", zap.Error(err))
		http.Error(w, "Failed to aggregate stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func validCategory(category string) bool {
	for _, c := range model.Categories() {
		if c == category {
			return true
		}
	}
	return false
}
