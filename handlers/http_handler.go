// Package handlers provides HTTP request handlers for the prescription assistant endpoints.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/giygas/prescription-assistant/data"
	"github.com/giygas/prescription-assistant/entities"
	"github.com/giygas/prescription-assistant/interfaces"
	"github.com/giygas/prescription-assistant/logging"
	"github.com/giygas/prescription-assistant/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	store         interfaces.PrescriptionStore
	validator     interfaces.InputValidator
	resolver      interfaces.QueryResolver
	healthChecker interfaces.HealthChecker
	chatLimiter   interfaces.RateLimiter
	upgrader      websocket.Upgrader
}

// Option configures optional handler dependencies
type Option func(*HTTPHandlerImpl)

// WithChatLimiter charges every chat frame against the client's rate limit
// bucket. Without it chat frames are not limited after the upgrade.
func WithChatLimiter(limiter interfaces.RateLimiter) Option {
	return func(h *HTTPHandlerImpl) {
		h.chatLimiter = limiter
	}
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(store interfaces.PrescriptionStore, validator interfaces.InputValidator,
	resolver interfaces.QueryResolver, healthChecker interfaces.HealthChecker, opts ...Option) interfaces.HTTPHandler {
	h := &HTTPHandlerImpl{
		store:         store,
		validator:     validator,
		resolver:      resolver,
		healthChecker: healthChecker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Nil CheckOrigin keeps gorilla's same-origin check
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// prescriptionRequest is the body of create and replace calls
type prescriptionRequest struct {
	Medicines []entities.MedicineRecord `json:"medicines"`
}

// askRequest is the body of a question about a stored prescription
type askRequest struct {
	Message string `json:"message"`
}

// statelessAskRequest carries the medicine list along with the question
type statelessAskRequest struct {
	Message   string                    `json:"message"`
	Medicines []entities.MedicineRecord `json:"medicines"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// decodeJSON reads a JSON body into dst and reports failures to the client.
// It returns false when a response has already been written.
func (h *HTTPHandlerImpl) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.RespondWithError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body too large. Maximum allowed size is %d bytes", maxBytesErr.Limit))
		case errors.Is(err, io.EOF):
			h.RespondWithError(w, http.StatusBadRequest, "Request body cannot be empty")
		default:
			h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		}
		return false
	}

	return true
}

// prescriptionID reads and validates the {id} URL parameter
func (h *HTTPHandlerImpl) prescriptionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidatePrescriptionID(id); err != nil {
		logging.Warn("Unusual user input", "id", id)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}

// respondWithStoreError maps store errors to HTTP status codes
func (h *HTTPHandlerImpl) respondWithStoreError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, data.ErrPrescriptionNotFound) {
		h.RespondWithError(w, http.StatusNotFound, "Prescription not found")
		return
	}

	logging.Error("Prescription store failure", "id", id, "error", err)
	h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}

// resolve answers message and maps engine errors to HTTP status codes
func (h *HTTPHandlerImpl) resolve(w http.ResponseWriter, message string, medicines []entities.MedicineRecord) {
	answer, err := h.resolver.Resolve(message, medicines)
	if err != nil {
		if errors.Is(err, assistant.ErrInvalidRecord) {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error("Failed to resolve question", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logging.Debug("Question answered", "intent", answer.Intent, "match_tier", answer.Tier)
	h.RespondWithJSON(w, http.StatusOK, answer)
}

// CreatePrescription stores a new medicine list and returns it with its ID
func (h *HTTPHandlerImpl) CreatePrescription(w http.ResponseWriter, r *http.Request) {
	var req prescriptionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateMedicines(req.Medicines); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := h.store.Create(req.Medicines)
	metrics.PrescriptionsActive.Set(float64(h.store.Count()))
	logging.Info("Prescription created", "id", p.ID, "medicines", len(p.Medicines))

	w.Header().Set("Location", "/v1/prescriptions/"+p.ID)
	h.RespondWithJSON(w, http.StatusCreated, p)
}

// GetPrescription returns a stored prescription
func (h *HTTPHandlerImpl) GetPrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.prescriptionID(w, r)
	if !ok {
		return
	}

	p, err := h.store.Get(id)
	if err != nil {
		h.respondWithStoreError(w, id, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, p)
}

// ReplacePrescription swaps the medicine list of a stored prescription.
// Hosts use it to apply edits, additions and removals between questions.
func (h *HTTPHandlerImpl) ReplacePrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.prescriptionID(w, r)
	if !ok {
		return
	}

	var req prescriptionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateMedicines(req.Medicines); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.store.Replace(id, req.Medicines)
	if err != nil {
		h.respondWithStoreError(w, id, err)
		return
	}

	logging.Info("Prescription replaced", "id", id, "medicines", len(p.Medicines))
	h.RespondWithJSON(w, http.StatusOK, p)
}

// DeletePrescription removes a stored prescription
func (h *HTTPHandlerImpl) DeletePrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.prescriptionID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.respondWithStoreError(w, id, err)
		return
	}

	metrics.PrescriptionsActive.Set(float64(h.store.Count()))
	logging.Info("Prescription deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Ask answers a question about a stored prescription
func (h *HTTPHandlerImpl) Ask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.prescriptionID(w, r)
	if !ok {
		return
	}

	var req askRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateMessage(req.Message); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.store.Get(id)
	if err != nil {
		h.respondWithStoreError(w, id, err)
		return
	}

	h.resolve(w, req.Message, p.Medicines)
}

// AskStateless answers a question about a medicine list sent with the request
func (h *HTTPHandlerImpl) AskStateless(w http.ResponseWriter, r *http.Request) {
	var req statelessAskRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateMessage(req.Message); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validator.ValidateMedicines(req.Medicines); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.resolve(w, req.Message, req.Medicines)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.healthChecker.HealthCheck()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var uptime time.Duration
	if start := h.store.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          details,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
