package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRuleOrder(t *testing.T) {
	tests := []struct {
		utterance   string
		entityFound bool
		want        Intent
	}{
		{"how often do I take it", true, IntentMedicineLookup},
		{"what is the frequency", true, IntentMedicineLookup},
		{"How OFTEN should I take my pills", false, IntentFrequency},
		{"when do I take them", false, IntentFrequency},
		{"what is the dose", false, IntentDosage},
		{"dosage please", false, IntentDosage},
		{"duration of treatment", false, IntentDuration},
		{"for how many days", false, IntentFrequency},
		{"number of days", false, IntentDuration},
		{"how long do I continue", false, IntentFrequency},
		{"give me a full summary", false, IntentSummary},
		{"list all of them", false, IntentSummary},
		{"what is it for", false, IntentIndication},
		{"any side effects?", false, IntentSideEffects},
		{"are there risks", false, IntentSideEffects},
		{"thanks a lot", false, IntentGratitude},
		{"thank you so much", false, IntentGratitude},
		{"hello", false, IntentGreeting},
		{"hi there", false, IntentGreeting},
		{"xyz", false, IntentFallback},
		{"", false, IntentFallback},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.utterance, tt.entityFound))
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	known := make(map[Intent]bool)
	for _, i := range Intents() {
		known[i] = true
	}
	assert.Len(t, known, 10)

	inputs := []string{"", " ", "\n\t", "???", "こんにちは", "1234", "hello thank you", "ｈｅｌｌｏ"}
	for _, in := range inputs {
		for _, found := range []bool{true, false} {
			got := Classify(in, found)
			assert.True(t, known[got], "Classify(%q, %v) returned unknown intent %q", in, found, got)
		}
	}
}

func TestIntentsPriorityOrder(t *testing.T) {
	got := Intents()
	assert.Equal(t, IntentMedicineLookup, got[0])
	assert.Equal(t, IntentFallback, got[len(got)-1])
}
