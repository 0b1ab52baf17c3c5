// Package data provides thread-safe in-memory storage for prescriptions.
// Readers load an immutable map snapshot through atomic.Value while writers
// build and swap a new map, so a query never sees a medicine list that is
// being edited.
package data

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giygas/prescription-assistant/entities"
	"github.com/giygas/prescription-assistant/interfaces"
	"github.com/giygas/prescription-assistant/logging"
	"github.com/google/uuid"
)

// ErrPrescriptionNotFound is returned for unknown or evicted prescription IDs
var ErrPrescriptionNotFound = errors.New("prescription not found")

// Compile-time check to ensure PrescriptionContainer implements PrescriptionStore
var _ interfaces.PrescriptionStore = (*PrescriptionContainer)(nil)

// entry is never modified after it is published, except for lastAccessed
type entry struct {
	prescription entities.Prescription
	lastAccessed atomic.Int64 // unix nanoseconds
}

func newEntry(p entities.Prescription) *entry {
	e := &entry{prescription: p}
	e.lastAccessed.Store(p.UpdatedAt.UnixNano())
	return e
}

// snapshot returns a copy the caller may keep and modify
func (e *entry) snapshot() entities.Prescription {
	p := e.prescription
	p.Medicines = cloneMedicines(e.prescription.Medicines)
	p.LastAccessed = time.Unix(0, e.lastAccessed.Load())
	return p
}

// cloneMedicines never returns nil so an empty list encodes as []
func cloneMedicines(medicines []entities.MedicineRecord) []entities.MedicineRecord {
	out := make([]entities.MedicineRecord, len(medicines))
	copy(out, medicines)
	return out
}

// PrescriptionContainer holds the active prescriptions keyed by ID
type PrescriptionContainer struct {
	prescriptions   atomic.Value // map[string]*entry
	writeMu         sync.Mutex   // serializes copy-on-write updates
	lastUpdated     atomic.Value // time.Time
	serverStartTime atomic.Value // time.Time
	now             func() time.Time
}

// NewPrescriptionContainer creates an empty container
func NewPrescriptionContainer() *PrescriptionContainer {
	pc := &PrescriptionContainer{now: time.Now}
	pc.prescriptions.Store(make(map[string]*entry))
	pc.lastUpdated.Store(time.Time{})
	pc.serverStartTime.Store(time.Time{})
	return pc
}

func (pc *PrescriptionContainer) load() map[string]*entry {
	if v := pc.prescriptions.Load(); v != nil {
		if m, ok := v.(map[string]*entry); ok {
			return m
		}
	}

	logging.Warn("Prescription map is empty or invalid")
	return map[string]*entry{}
}

// update copies the current map, applies fn and swaps the result in.
// Caller holds writeMu.
func (pc *PrescriptionContainer) update(fn func(m map[string]*entry)) {
	current := pc.load()
	next := make(map[string]*entry, len(current)+1)
	for id, e := range current {
		next[id] = e
	}
	fn(next)
	pc.prescriptions.Store(next)
	pc.lastUpdated.Store(pc.now())
}

// Create stores a new prescription with a generated ID
func (pc *PrescriptionContainer) Create(medicines []entities.MedicineRecord) entities.Prescription {
	now := pc.now()
	p := entities.Prescription{
		ID:        uuid.NewString(),
		Medicines: cloneMedicines(medicines),
		CreatedAt: now,
		UpdatedAt: now,
	}

	pc.writeMu.Lock()
	e := newEntry(p)
	pc.update(func(m map[string]*entry) { m[p.ID] = e })
	pc.writeMu.Unlock()

	return e.snapshot()
}

// Get returns a snapshot of the prescription and marks it as accessed
func (pc *PrescriptionContainer) Get(id string) (entities.Prescription, error) {
	e, ok := pc.load()[id]
	if !ok {
		return entities.Prescription{}, ErrPrescriptionNotFound
	}
	e.lastAccessed.Store(pc.now().UnixNano())
	return e.snapshot(), nil
}

// Replace swaps the medicine list of an existing prescription
func (pc *PrescriptionContainer) Replace(id string, medicines []entities.MedicineRecord) (entities.Prescription, error) {
	pc.writeMu.Lock()
	defer pc.writeMu.Unlock()

	old, ok := pc.load()[id]
	if !ok {
		return entities.Prescription{}, ErrPrescriptionNotFound
	}

	p := old.prescription
	p.Medicines = cloneMedicines(medicines)
	p.UpdatedAt = pc.now()

	e := newEntry(p)
	pc.update(func(m map[string]*entry) { m[id] = e })
	return e.snapshot(), nil
}

// Delete removes a prescription
func (pc *PrescriptionContainer) Delete(id string) error {
	pc.writeMu.Lock()
	defer pc.writeMu.Unlock()

	if _, ok := pc.load()[id]; !ok {
		return ErrPrescriptionNotFound
	}
	pc.update(func(m map[string]*entry) { delete(m, id) })
	return nil
}

// Count returns the number of stored prescriptions
func (pc *PrescriptionContainer) Count() int {
	return len(pc.load())
}

// EvictIdle removes prescriptions not accessed since cutoff and returns
// how many were removed
func (pc *PrescriptionContainer) EvictIdle(cutoff time.Time) int {
	pc.writeMu.Lock()
	defer pc.writeMu.Unlock()

	var expired []string
	for id, e := range pc.load() {
		if e.lastAccessed.Load() < cutoff.UnixNano() {
			expired = append(expired, id)
		}
	}
	if len(expired) == 0 {
		return 0
	}

	pc.update(func(m map[string]*entry) {
		for _, id := range expired {
			delete(m, id)
		}
	})
	return len(expired)
}

// GetLastUpdated returns the time of the last write
func (pc *PrescriptionContainer) GetLastUpdated() time.Time {
	if v := pc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// SetServerStartTime sets the server start time
func (pc *PrescriptionContainer) SetServerStartTime(startTime time.Time) {
	pc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (pc *PrescriptionContainer) GetServerStartTime() time.Time {
	if v := pc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}
