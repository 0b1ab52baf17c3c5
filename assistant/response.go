package assistant

import (
	"fmt"
	"strings"

	"github.com/giygas/prescription-assistant/entities"
)

const (
	notSpecified = "Not specified"

	genericAlternativesCTA = "You can also look for generic alternatives to your medicines: they contain " +
		"the same active ingredients and often cost much less."

	gratitudeText = "You're welcome! Is there anything else you'd like to know about your prescription? " +
		"Remember, you can also check for generic alternatives to save money."

	fallbackText = "I'm not sure how to answer that. You can ask me about a medicine by name, " +
		"about the dosage, frequency or duration of your medicines, " +
		"or for a complete summary of your prescription."
)

type field struct {
	label string
	noun  string
	value func(entities.MedicineRecord) string
}

var (
	dosageField       = field{"Dosage", "dosage", func(m entities.MedicineRecord) string { return m.Dosage }}
	frequencyField    = field{"Frequency", "frequency", func(m entities.MedicineRecord) string { return m.Frequency }}
	durationField     = field{"Duration", "duration", func(m entities.MedicineRecord) string { return m.Duration }}
	instructionsField = field{"Instructions", "instructions", func(m entities.MedicineRecord) string { return m.Instructions }}
	quantityField     = field{"Quantity", "quantity", func(m entities.MedicineRecord) string { return m.Quantity }}
)

// recordFields is the fixed order in which record details are listed.
var recordFields = []field{dosageField, frequencyField, durationField, instructionsField, quantityField}

var attributeFields = map[Intent]field{
	IntentDosage:    dosageField,
	IntentFrequency: frequencyField,
	IntentDuration:  durationField,
}

// Synthesize renders the answer for an intent. It is pure: the same
// arguments always produce the same bytes.
func Synthesize(intent Intent, entity *entities.MedicineRecord, records []entities.MedicineRecord) string {
	switch intent {
	case IntentMedicineLookup:
		if entity == nil {
			return fallbackText
		}
		return medicineLookup(*entity)
	case IntentDosage, IntentFrequency, IntentDuration:
		f := attributeFields[intent]
		if entity != nil {
			return fmt.Sprintf("%s for %s: %s", f.label, entity.DisplayName(), valueOrNotSpecified(f, *entity))
		}
		return attributeList(f, records)
	case IntentSummary:
		return summary(records)
	case IntentIndication:
		if entity != nil {
			return fmt.Sprintf("I'm sorry, I don't have information about what %s is for. "+
				"Please consult your doctor or pharmacist for this information.", entity.BrandName)
		}
		return "I'm sorry, I don't have information about what each medicine is for. " +
			"Please consult your doctor or pharmacist for this information."
	case IntentSideEffects:
		if entity != nil {
			return fmt.Sprintf("I don't have information about the side effects of %s. "+
				"Please consult your doctor, your pharmacist or the package insert.", entity.BrandName)
		}
		return "I don't have information about side effects. " +
			"Please consult your doctor, your pharmacist or the package insert."
	case IntentGreeting:
		return greeting(len(records))
	case IntentGratitude:
		return gratitudeText
	default:
		return fallbackText
	}
}

func valueOrNotSpecified(f field, m entities.MedicineRecord) string {
	if v := strings.TrimSpace(f.value(m)); v != "" {
		return v
	}
	return notSpecified
}

func medicineLookup(m entities.MedicineRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is what your prescription says about %s:\n", m.DisplayName())

	listed := 0
	for _, f := range recordFields {
		v := strings.TrimSpace(f.value(m))
		if v == "" {
			continue
		}
		fmt.Fprintf(&b, "• %s: %s\n", f.label, v)
		listed++
	}
	if listed == 0 {
		b.WriteString("No further details are recorded for this medicine.\n")
	}

	b.WriteString(genericAlternativesCTA)
	return b.String()
}

func attributeList(f field, records []entities.MedicineRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("I couldn't find any %s information because your prescription has no medicines.", f.noun)
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, fmt.Sprintf("Here is the %s for each medicine in your prescription:", f.noun))
	for _, m := range records {
		lines = append(lines, fmt.Sprintf("• %s: %s", m.DisplayName(), valueOrNotSpecified(f, m)))
	}
	return strings.Join(lines, "\n")
}

func summary(records []entities.MedicineRecord) string {
	if len(records) == 0 {
		return "Your prescription has no medicines, so there is nothing to summarize yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here is the complete summary of your prescription (%s):\n", countMedicines(len(records)))
	for i, m := range records {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, m.DisplayName())
		for _, f := range recordFields {
			if v := strings.TrimSpace(f.value(m)); v != "" {
				fmt.Fprintf(&b, "   %s: %s\n", f.label, v)
			}
		}
	}
	b.WriteString("\n")
	b.WriteString(genericAlternativesCTA)
	return b.String()
}

func greeting(count int) string {
	return fmt.Sprintf("Hello! Your prescription has %s. How can I help you with it today? "+
		"You can ask me about a medicine by name or about dosage, frequency and duration.", countMedicines(count))
}

func countMedicines(n int) string {
	if n == 1 {
		return "1 medicine"
	}
	return fmt.Sprintf("%d medicines", n)
}
