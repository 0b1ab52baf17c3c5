package assistant

import "strings"

// Intent is the kind of information an utterance asks for.
type Intent string

const (
	IntentMedicineLookup Intent = "MEDICINE_LOOKUP"
	IntentFrequency      Intent = "FREQUENCY"
	IntentDosage         Intent = "DOSAGE"
	IntentDuration       Intent = "DURATION"
	IntentSummary        Intent = "SUMMARY"
	IntentIndication     Intent = "INDICATION"
	IntentSideEffects    Intent = "SIDE_EFFECTS"
	IntentGratitude      Intent = "GRATITUDE"
	IntentGreeting       Intent = "GREETING"
	IntentFallback       Intent = "FALLBACK"
)

type intentRule struct {
	intent  Intent
	matches func(utterance string, entityFound bool) bool
}

// intentRules is evaluated top to bottom and the first match wins.
// A resolved entity pre-empts every keyword rule.
var intentRules = []intentRule{
	{IntentMedicineLookup, func(_ string, entityFound bool) bool { return entityFound }},
	{IntentFrequency, keywords("frequency", "often", "when", "how", "take")},
	{IntentDosage, keywords("dosage", "dose")},
	{IntentDuration, keywords("duration", "how long", "days")},
	{IntentSummary, keywords("complete", "all", "full")},
	{IntentIndication, func(u string, _ bool) bool {
		return strings.Contains(u, "what") && strings.Contains(u, "for")
	}},
	{IntentSideEffects, keywords("side effect", "risks")},
	{IntentGratitude, keywords("thank")},
	{IntentGreeting, keywords("hello", "hi")},
	{IntentFallback, func(string, bool) bool { return true }},
}

func keywords(kw ...string) func(string, bool) bool {
	return func(u string, _ bool) bool {
		for _, k := range kw {
			if strings.Contains(u, k) {
				return true
			}
		}
		return false
	}
}

// Intents lists every intent in rule priority order.
func Intents() []Intent {
	out := make([]Intent, len(intentRules))
	for i, r := range intentRules {
		out[i] = r.intent
	}
	return out
}

// Classify maps an utterance to exactly one intent.
func Classify(utterance string, entityFound bool) Intent {
	return classifyNormalized(normalize(utterance), entityFound)
}

func classifyNormalized(utterance string, entityFound bool) Intent {
	for _, r := range intentRules {
		if r.matches(utterance, entityFound) {
			return r.intent
		}
	}
	return IntentFallback
}
