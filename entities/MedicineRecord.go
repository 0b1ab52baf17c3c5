package entities

// MedicineRecord is one medicine line of an extracted prescription.
// Optional fields are empty strings when the prescription does not state them.
type MedicineRecord struct {
	BrandName    string `json:"brand_name" yaml:"brand_name"`
	GenericName  string `json:"generic_name,omitempty" yaml:"generic_name,omitempty"`
	Dosage       string `json:"dosage,omitempty" yaml:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Duration     string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Quantity     string `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// DisplayName returns the brand name followed by the generic name in parentheses, when known.
func (m MedicineRecord) DisplayName() string {
	if m.GenericName == "" {
		return m.BrandName
	}
	return m.BrandName + " (" + m.GenericName + ")"
}
