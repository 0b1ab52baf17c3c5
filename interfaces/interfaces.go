// Package interfaces defines the core abstractions shared by the prescription
// assistant packages so stores, resolvers and validators can be swapped in tests.
package interfaces

import (
	"net/http"
	"time"

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/giygas/prescription-assistant/entities"
)

// PrescriptionStore defines the contract for prescription storage.
// Implementations hand out snapshots: callers may modify returned values
// without affecting stored data.
type PrescriptionStore interface {
	Create(medicines []entities.MedicineRecord) entities.Prescription
	Get(id string) (entities.Prescription, error)
	Replace(id string, medicines []entities.MedicineRecord) (entities.Prescription, error)
	Delete(id string) error
	Count() int

	// EvictIdle removes prescriptions not accessed since cutoff
	EvictIdle(cutoff time.Time) int

	GetLastUpdated() time.Time
	GetServerStartTime() time.Time
}

// QueryResolver answers a free-text question against a medicine list
type QueryResolver interface {
	Resolve(utterance string, records []entities.MedicineRecord) (assistant.Answer, error)
}

// Responder answers with text only, for surfaces that must never fail a turn
type Responder interface {
	Respond(utterance string, records []entities.MedicineRecord) string
}

// Scheduler defines the contract for background jobs such as session eviction
type Scheduler interface {
	Start() error
	Stop()

	// LastRun returns when idle prescriptions were last evicted, zero if never
	LastRun() time.Time
}

// HTTPHandler defines the contract for HTTP request handlers
type HTTPHandler interface {
	// Prescription resources
	CreatePrescription(w http.ResponseWriter, r *http.Request)
	GetPrescription(w http.ResponseWriter, r *http.Request)
	ReplacePrescription(w http.ResponseWriter, r *http.Request)
	DeletePrescription(w http.ResponseWriter, r *http.Request)

	// Questions
	Ask(w http.ResponseWriter, r *http.Request)
	AskStateless(w http.ResponseWriter, r *http.Request)
	Chat(w http.ResponseWriter, r *http.Request)

	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports service health
type HealthChecker interface {
	// HealthCheck returns the status label, details and the HTTP status to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// InputValidator checks client input before it reaches the store or the resolver
type InputValidator interface {
	ValidateMedicines(records []entities.MedicineRecord) error
	ValidateMessage(message string) error
	ValidatePrescriptionID(id string) error
}

// RateLimiter charges a cost against a client's token bucket
type RateLimiter interface {
	// Allow takes cost tokens and reports whether the client had enough
	Allow(clientIP string, cost int64) bool
}
