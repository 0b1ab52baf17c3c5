// Package assistant answers free-text questions about a prescription
// without a language model. An utterance is resolved to a medicine with a
// three-tier fuzzy match, classified with an ordered keyword rule table
// and answered from fixed templates.
package assistant

import "github.com/giygas/prescription-assistant/entities"

// Answer is the outcome of resolving one utterance.
type Answer struct {
	Intent Intent                   `json:"intent"`
	Entity *entities.MedicineRecord `json:"medicine,omitempty"`
	Tier   Tier                     `json:"match_tier"`
	Text   string                   `json:"response"`
}

// Option configures a QueryResolver.
type Option func(*QueryResolver)

// WithObserver registers a callback invoked with every successful answer.
func WithObserver(fn func(Answer)) Option {
	return func(q *QueryResolver) {
		q.observers = append(q.observers, fn)
	}
}

// QueryResolver composes entity resolution, intent classification and
// response synthesis. It keeps no state between calls and may be shared.
type QueryResolver struct {
	observers []func(Answer)
}

// NewQueryResolver creates a resolver.
func NewQueryResolver(opts ...Option) *QueryResolver {
	q := &QueryResolver{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Resolve answers utterance against records. The only error is a record
// contract violation, reported as ErrInvalidRecord. records is read, never
// modified; callers sharing it with writers must pass a snapshot.
func (q *QueryResolver) Resolve(utterance string, records []entities.MedicineRecord) (Answer, error) {
	if err := ValidateRecords(records); err != nil {
		return Answer{}, err
	}

	u := normalize(utterance)
	entity, tier := resolveNormalized(u, records)
	intent := classifyNormalized(u, entity != nil)

	answer := Answer{
		Intent: intent,
		Entity: entity,
		Tier:   tier,
		Text:   Synthesize(intent, entity, records),
	}

	for _, fn := range q.observers {
		fn(answer)
	}
	return answer, nil
}

// Respond is Resolve for conversational surfaces: it always returns text
// and degrades to the fallback wording when the records are invalid.
func (q *QueryResolver) Respond(utterance string, records []entities.MedicineRecord) string {
	answer, err := q.Resolve(utterance, records)
	if err != nil {
		return fallbackText
	}
	return answer.Text
}
