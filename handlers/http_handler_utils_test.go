package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/giygas/prescription-assistant/data"
	"github.com/giygas/prescription-assistant/entities"
	"github.com/go-chi/chi/v5"
)

// ============================================================================
// TEST DATA
// ============================================================================

const (
	knownID   = "3f2b8c1e-6a4d-4e8f-9b1a-2c3d4e5f6a7b"
	unknownID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

func testMedicines() []entities.MedicineRecord {
	return []entities.MedicineRecord{
		{BrandName: "Augmentin", GenericName: "Amoxicillin/Clavulanate", Dosage: "625mg", Frequency: "twice daily", Duration: "5 days"},
		{BrandName: "Crocin", Dosage: "500mg", Instructions: "after food", Quantity: "10"},
	}
}

// ============================================================================
// MOCKS
// ============================================================================

// MockPrescriptionStore implements interfaces.PrescriptionStore with a plain map
type MockPrescriptionStore struct {
	mu            sync.Mutex
	prescriptions map[string]entities.Prescription
	nextID        string
	failWith      error
	startTime     time.Time
}

func (m *MockPrescriptionStore) Create(medicines []entities.MedicineRecord) entities.Prescription {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := entities.Prescription{ID: m.nextID, Medicines: medicines, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.prescriptions[p.ID] = p
	return p
}

func (m *MockPrescriptionStore) Get(id string) (entities.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return entities.Prescription{}, m.failWith
	}
	p, ok := m.prescriptions[id]
	if !ok {
		return entities.Prescription{}, data.ErrPrescriptionNotFound
	}
	return p, nil
}

func (m *MockPrescriptionStore) Replace(id string, medicines []entities.MedicineRecord) (entities.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prescriptions[id]
	if !ok {
		return entities.Prescription{}, data.ErrPrescriptionNotFound
	}
	p.Medicines = medicines
	p.UpdatedAt = time.Now()
	m.prescriptions[id] = p
	return p, nil
}

func (m *MockPrescriptionStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prescriptions[id]; !ok {
		return data.ErrPrescriptionNotFound
	}
	delete(m.prescriptions, id)
	return nil
}

func (m *MockPrescriptionStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prescriptions)
}

func (m *MockPrescriptionStore) EvictIdle(cutoff time.Time) int { return 0 }

func (m *MockPrescriptionStore) GetLastUpdated() time.Time { return time.Now() }

func (m *MockPrescriptionStore) GetServerStartTime() time.Time { return m.startTime }

// MockInputValidator implements interfaces.InputValidator
type MockInputValidator struct {
	medicinesError error
	messageError   error
	idError        error
}

func (m *MockInputValidator) ValidateMedicines(records []entities.MedicineRecord) error {
	if m.medicinesError != nil {
		return m.medicinesError
	}
	return assistant.ValidateRecords(records)
}

// ValidateMessage refuses markup like the real validator; blank messages pass
func (m *MockInputValidator) ValidateMessage(message string) error {
	if strings.Contains(strings.ToLower(message), "<script") {
		return errors.New("input contains potentially dangerous content")
	}
	return m.messageError
}

func (m *MockInputValidator) ValidatePrescriptionID(id string) error {
	if id == "" {
		return errors.New("prescription ID cannot be empty")
	}
	return m.idError
}

// MockQueryResolver returns a fixed answer or error
type MockQueryResolver struct {
	answer assistant.Answer
	err    error
}

func (m *MockQueryResolver) Resolve(utterance string, records []entities.MedicineRecord) (assistant.Answer, error) {
	return m.answer, m.err
}

// MockHealthChecker implements interfaces.HealthChecker
type MockHealthChecker struct {
	status     string
	details    map[string]any
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, m.details, m.httpStatus
}

// ============================================================================
// MOCK BUILDERS
// ============================================================================

// MockPrescriptionStoreBuilder provides fluent interface for building mock stores
type MockPrescriptionStoreBuilder struct {
	mock *MockPrescriptionStore
}

func NewMockPrescriptionStoreBuilder() *MockPrescriptionStoreBuilder {
	return &MockPrescriptionStoreBuilder{
		mock: &MockPrescriptionStore{
			prescriptions: make(map[string]entities.Prescription),
			nextID:        knownID,
		},
	}
}

func (b *MockPrescriptionStoreBuilder) WithPrescription(id string, medicines []entities.MedicineRecord) *MockPrescriptionStoreBuilder {
	b.mock.prescriptions[id] = entities.Prescription{ID: id, Medicines: medicines}
	return b
}

func (b *MockPrescriptionStoreBuilder) WithFailure(err error) *MockPrescriptionStoreBuilder {
	b.mock.failWith = err
	return b
}

func (b *MockPrescriptionStoreBuilder) WithStartTime(start time.Time) *MockPrescriptionStoreBuilder {
	b.mock.startTime = start
	return b
}

func (b *MockPrescriptionStoreBuilder) Build() *MockPrescriptionStore {
	return b.mock
}

// MockInputValidatorBuilder provides fluent interface for building mock validators
type MockInputValidatorBuilder struct {
	mock *MockInputValidator
}

func NewMockInputValidatorBuilder() *MockInputValidatorBuilder {
	return &MockInputValidatorBuilder{mock: &MockInputValidator{}}
}

func (b *MockInputValidatorBuilder) WithMedicinesError(err error) *MockInputValidatorBuilder {
	b.mock.medicinesError = err
	return b
}

func (b *MockInputValidatorBuilder) WithMessageError(err error) *MockInputValidatorBuilder {
	b.mock.messageError = err
	return b
}

func (b *MockInputValidatorBuilder) WithIDError(err error) *MockInputValidatorBuilder {
	b.mock.idError = err
	return b
}

func (b *MockInputValidatorBuilder) Build() *MockInputValidator {
	return b.mock
}

// newTestHandler wires a handler with the real query resolver
func newTestHandler(store *MockPrescriptionStore, validator *MockInputValidator, opts ...Option) *HTTPHandlerImpl {
	health := &MockHealthChecker{status: "healthy", details: map[string]any{}, httpStatus: http.StatusOK}
	return NewHTTPHandler(store, validator, assistant.NewQueryResolver(), health, opts...).(*HTTPHandlerImpl)
}

// MockRateLimiter allows the first `allowed` calls and denies the rest
type MockRateLimiter struct {
	mu      sync.Mutex
	allowed int
	costs   []int64
	ips     []string
}

func (m *MockRateLimiter) Allow(clientIP string, cost int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.costs = append(m.costs, cost)
	m.ips = append(m.ips, clientIP)
	return len(m.costs) <= m.allowed
}

func (m *MockRateLimiter) calls() ([]string, []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ips...), append([]int64(nil), m.costs...)
}

// ============================================================================
// HTTP TEST UTILITIES
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler with given parameters and JSON body
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, method, path string, urlParams map[string]string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, bytes.NewBufferString(b))
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			h.t.Fatalf("Failed to marshal request body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
	}
	req.Header.Set("Content-Type", "application/json")

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range urlParams {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	h.t.Helper()
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d (body: %s)", expectedStatus, resp.Code, resp.Body.String())
	}

	if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v", err)
	}
}

// AssertErrorResponse asserts that response contains an error with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int) map[string]any {
	h.t.Helper()
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d (body: %s)", expectedStatus, resp.Code, resp.Body.String())
	}

	var errorResp map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &errorResp); err != nil {
		h.t.Errorf("Error response should be valid JSON, got error: %v", err)
		return nil
	}

	for _, field := range []string{"error", "message", "code"} {
		if _, ok := errorResp[field]; !ok {
			h.t.Errorf("Error response should have %s field", field)
		}
	}
	return errorResp
}
