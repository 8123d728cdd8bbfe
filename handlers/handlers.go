package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gpustats/models"
	"gpustats/repository"
	"gpustats/scheduler"
)

// ProductReader reads the catalog
type ProductReader interface {
	Products(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, name string) (*models.Product, error)
}

// RunQueue accepts and reports runs
type RunQueue interface {
	Submit(sources []string) (models.Run, error)
	Get(id string) (models.Run, bool)
	List() []models.Run
}

type Handlers struct {
	products ProductReader
	runs     RunQueue
	sources  map[string]bool
	metrics  http.Handler
}

// NewHandlers creates the API handlers. sources are the configured source names
// a run may request.
func NewHandlers(products ProductReader, runs RunQueue, sources []string, metrics http.Handler) *Handlers {
	known := make(map[string]bool, len(sources))
	for _, s := range sources {
		known[s] = true
	}
	return &Handlers{products: products, runs: runs, sources: known, metrics: metrics}
}

// Router registers every route on a new router
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics).Methods("GET")
	}

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/products", h.GetProducts).Methods("GET")
	apiV1.HandleFunc("/products/{name}", h.GetProduct).Methods("GET")
	apiV1.HandleFunc("/runs", h.SubmitRun).Methods("POST")
	apiV1.HandleFunc("/runs", h.GetRuns).Methods("GET")
	apiV1.HandleFunc("/runs/{id}", h.GetRun).Methods("GET")

	return r
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "gpustats",
	})
}

// GetProducts returns the whole catalog
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Products(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get products")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct returns one product by exact name
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	product, err := h.products.Product(r.Context(), name)
	if errors.Is(err, repository.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

type runRequest struct {
	Sources []string `json:"sources"`
}

// SubmitRun queues a run over the requested sources, or every enabled source
func (h *Handlers) SubmitRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	for _, s := range req.Sources {
		if !h.sources[s] {
			writeError(w, http.StatusBadRequest, "Unknown source: "+s)
			return
		}
	}

	run, err := h.runs.Submit(req.Sources)
	if errors.Is(err, scheduler.ErrQueueFull) {
		writeError(w, http.StatusTooManyRequests, "Run queue is full")
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Runs are not accepted")
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

// GetRuns returns every known run, newest first
func (h *Handlers) GetRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.runs.List())
}

// GetRun returns the status of one run
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.runs.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "Run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
