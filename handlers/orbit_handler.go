// handlers/orbit_handler.go
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/gewnthar/eof/models"
	"github.com/gewnthar/eof/products"
	"github.com/gewnthar/eof/services"
	"github.com/gewnthar/eof/validity"
)

// OrbitHandler serves the orbit selection API.
type OrbitHandler struct {
	Service *services.OrbitService
	DB      *sql.DB // optional, pinged by the health check
}

// RegisterRoutes wires the API endpoints into mux.
func (h *OrbitHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", h.HealthHandler)
	mux.HandleFunc("/api/orbits/select", h.SelectOrbitHandler)
	mux.HandleFunc("/api/orbits/downloads", h.ListDownloadsHandler)
}

// HealthHandler reports service health, including the database when configured.
func (h *OrbitHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			log.Printf("Health check failed: DB ping error: %v", err)
			respondWithJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "database connection error"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "orbit service is healthy"})
}

// SelectOrbitHandler finds the orbit file covering a Sentinel-1 product.
// Expects POST to /api/orbits/select
// with JSON body: {"product": "S1A_IW_SLC__...", "product_type": "AUX_POEORB", "download": false}
func (h *OrbitHandler) SelectOrbitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req models.SelectOrbitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if req.Product == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'product' in request body")
		return
	}
	product, err := products.ParseProduct(req.Product)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	productType, err := models.ParseProductType(req.ProductType)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("Handler: Received select orbit request for %s (%s)\n", product.Name, productType)

	selected, err := h.Service.QueryOrbitForProduct(r.Context(), product, productType)
	if err != nil {
		respondWithError(w, statusForError(err), fmt.Sprintf("Failed to select orbit: %v", err))
		return
	}

	// The same orbit may be listed under several keys (.EOF and .EOF.zip).
	keys := make([]string, 0, len(selected))
	for k := range selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	orbit := selected[keys[0]]
	resp := models.SelectOrbitResponse{Product: product.Name, Orbit: orbit}

	if req.Download {
		paths, err := h.Service.DownloadOrbits(r.Context(), map[string]models.CatalogEntry{keys[0]: orbit})
		if err != nil {
			respondWithError(w, http.StatusBadGateway, fmt.Sprintf("Failed to download orbit: %v", err))
			return
		}
		resp.LocalPath = paths[keys[0]]
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// ListDownloadsHandler returns the download ledger.
// Expects GET to /api/orbits/downloads
func (h *OrbitHandler) ListDownloadsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	if h.Service.Ledger == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Download ledger is not enabled")
		return
	}

	downloads, err := h.Service.Ledger.ListDownloads()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list downloads: %v", err))
		return
	}
	if downloads == nil {
		downloads = []models.OrbitDownload{}
	}
	respondWithJSON(w, http.StatusOK, downloads)
}

func statusForError(err error) int {
	switch {
	case validity.IsSelectionError(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnsupportedMission),
		errors.Is(err, services.ErrUnsupportedProductType),
		errors.Is(err, validity.ErrInvertedInterval):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
