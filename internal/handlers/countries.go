package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/store"
)

// CountryHandler serves the read-only country browsing endpoints.
type CountryHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewCountryHandler(st store.Store, logger *zap.Logger) *CountryHandler {
	return &CountryHandler{store: st, logger: logger.Named("countries")}
}

// RegisterRoutes registers the routes for this handler.
func (h *CountryHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.HandleFunc("/v1/countries", h.handleList).Methods("GET")
	router.HandleFunc("/v1/countries/{cca3}", h.handleDetail).Methods("GET")
}

func (h *CountryHandler) handleList(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	filter := store.CountryFilter{
		RegionSlug: q.Get("region"),
		Search:     q.Get("search"),
		Page:       queryInt(q.Get("page"), 1),
		PerPage:    queryInt(q.Get("per_page"), 0),
	}

	countries, total, err := h.store.ListCountries(req.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list countries", zap.Error(err))
		http.Error(w, "Failed to list countries", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"countries": countries,
		"total":     total,
		"page":      filter.Page,
	})
}

func (h *CountryHandler) handleDetail(w http.ResponseWriter, req *http.Request) {
	cca3 := mux.Vars(req)["cca3"]

	country, err := h.store.GetCountryByCCA3(req.Context(), cca3)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Country not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch country", zap.String("cca3", cca3), zap.Error(err))
		http.Error(w, "Failed to fetch country", http.StatusInternalServerError)
		return
	}

	neighbors, err := h.store.CountriesByCCA3s(req.Context(), country.BorderCodes())
	if err != nil {
		h.logger.Error("failed to fetch neighbors", zap.String("cca3", cca3), zap.Error(err))
		http.Error(w, "Failed to fetch country", http.StatusInternalServerError)
		return
	}

	flags, err := h.store.ListFlags(req.Context(), store.FlagFilter{CountryID: &country.ID})
	if err != nil {
		h.logger.Error("failed to fetch additional flags", zap.String("cca3", cca3), zap.Error(err))
		http.Error(w, "Failed to fetch country", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"country":          country,
		"neighbors":        neighbors,
		"additional_flags": flags,
	})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
