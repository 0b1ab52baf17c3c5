package assistant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/prescription-assistant/entities"
)

// ErrInvalidRecord is the INVALID_RECORD condition: the caller supplied a
// medicine list that breaks the record contract.
var ErrInvalidRecord = errors.New("INVALID_RECORD")

// RecordError reports which record broke the contract.
type RecordError struct {
	Index  int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invalid medicine record at index %d: %s", e.Index, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrInvalidRecord
}

// ValidateRecords checks the only contract the engine relies on: every
// record carries a brand name. A nil slice is an empty prescription.
func ValidateRecords(records []entities.MedicineRecord) error {
	for i := range records {
		if strings.TrimSpace(records[i].BrandName) == "" {
			return &RecordError{Index: i, Reason: "brand_name is required"}
		}
	}
	return nil
}
