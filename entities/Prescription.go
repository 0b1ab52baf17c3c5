package entities

import "time"

// Prescription groups the medicine records of one prescription view.
// Medicines order is significant: enumeration and tie-breaks follow it.
type Prescription struct {
	ID           string           `json:"id" yaml:"id,omitempty"`
	Medicines    []MedicineRecord `json:"medicines" yaml:"medicines"`
	CreatedAt    time.Time        `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time        `json:"updated_at" yaml:"-"`
	LastAccessed time.Time        `json:"-" yaml:"-"`
}
