package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/giygas/prescription-assistant/entities"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor JSON
var ErrUnsupportedFormat = errors.New("unsupported prescription file format")

// prescriptionFile is the wrapped form {medicines: [...]}
type prescriptionFile struct {
	Medicines []entities.MedicineRecord `json:"medicines" yaml:"medicines"`
}

// LoadMedicines reads a prescription file. Both a bare list of medicines and
// an object with a "medicines" key are accepted. The format follows the
// extension: .json, or .yaml/.yml.
func LoadMedicines(path string) ([]entities.MedicineRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prescription file: %w", err)
	}

	var medicines []entities.MedicineRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		medicines, err = decodeJSON(raw)
	case ".yaml", ".yml":
		medicines, err = decodeYAML(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if err := assistant.ValidateRecords(medicines); err != nil {
		return nil, fmt.Errorf("invalid prescription %s: %w", filepath.Base(path), err)
	}

	return medicines, nil
}

func decodeJSON(raw []byte) ([]entities.MedicineRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("file is empty")
	}

	if trimmed[0] == '[' {
		var medicines []entities.MedicineRecord
		if err := json.Unmarshal(trimmed, &medicines); err != nil {
			return nil, err
		}
		return medicines, nil
	}

	var file prescriptionFile
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return nil, err
	}
	return file.Medicines, nil
}

func decodeYAML(raw []byte) ([]entities.MedicineRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("file is empty")
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var medicines []entities.MedicineRecord
		if err := root.Decode(&medicines); err != nil {
			return nil, err
		}
		return medicines, nil
	case yaml.MappingNode:
		var file prescriptionFile
		if err := root.Decode(&file); err != nil {
			return nil, err
		}
		return file.Medicines, nil
	}

	return nil, fmt.Errorf("expected a list of medicines or a medicines key at line %d", root.Line)
}
