// Package validation checks client input for the prescription assistant API.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/giygas/prescription-assistant/entities"
	"github.com/giygas/prescription-assistant/interfaces"
	"github.com/google/uuid"
)

// maxFieldLength caps every medicine record field, in characters
const maxFieldLength = 200

// Dangerous patterns as strings (faster than regex for simple substring matching).
// Questions are free text, so only markup and query-operator injection are refused:
// punctuation such as "; " or "--" is legitimate in a sentence.
var dangerousPatterns = []string{
	"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
	"onclick=", "onmouseover=", "onfocus=", "<iframe", "<object", "<embed",
	// NoSQL injection patterns
	"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
}

// InputValidatorImpl implements the interfaces.InputValidator interface
type InputValidatorImpl struct {
	maxMedicines     int
	maxMessageLength int
}

// NewInputValidator creates a validator with the configured limits
func NewInputValidator(maxMedicines, maxMessageLength int) interfaces.InputValidator {
	return &InputValidatorImpl{
		maxMedicines:     maxMedicines,
		maxMessageLength: maxMessageLength,
	}
}

// ValidateMedicines checks a medicine list before it is stored or queried.
// Records without a brand name are reported with assistant.ErrInvalidRecord.
func (v *InputValidatorImpl) ValidateMedicines(records []entities.MedicineRecord) error {
	if len(records) > v.maxMedicines {
		return fmt.Errorf("too many medicines: maximum %d allowed, got %d", v.maxMedicines, len(records))
	}

	if err := assistant.ValidateRecords(records); err != nil {
		return err
	}

	for i, rec := range records {
		fields := []struct{ name, value string }{
			{"brand_name", rec.BrandName},
			{"generic_name", rec.GenericName},
			{"dosage", rec.Dosage},
			{"frequency", rec.Frequency},
			{"duration", rec.Duration},
			{"instructions", rec.Instructions},
			{"quantity", rec.Quantity},
		}
		for _, f := range fields {
			if err := validateText(f.value, maxFieldLength); err != nil {
				return fmt.Errorf("medicine %d: invalid %s: %w", i, f.name, err)
			}
		}
	}

	return nil
}

// ValidateMessage checks a chat message. Only unsafe input is refused: blank
// or oddly typed questions ("hiiiii", "what??????") still get an answer,
// the fallback one if nothing else matches.
func (v *InputValidatorImpl) ValidateMessage(message string) error {
	return validateText(message, v.maxMessageLength)
}

// ValidatePrescriptionID checks that id is a UUID
func (v *InputValidatorImpl) ValidatePrescriptionID(id string) error {
	if id == "" {
		return fmt.Errorf("prescription ID cannot be empty")
	}

	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid prescription ID: %w", err)
	}

	return nil
}

// validateText applies the checks shared by messages and record fields
func validateText(s string, maxLength int) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("input is not valid UTF-8")
	}

	if n := utf8.RuneCountInString(s); n > maxLength {
		return fmt.Errorf("input too long: maximum %d characters, got %d", maxLength, n)
	}

	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return fmt.Errorf("input contains control characters")
		}
	}

	lower := strings.ToLower(s)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	return nil
}
