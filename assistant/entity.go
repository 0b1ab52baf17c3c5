package assistant

import (
	"strings"

	"github.com/giygas/prescription-assistant/entities"
)

// Tier identifies which matching strategy resolved an entity.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierSubstring
	TierToken
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierSubstring:
		return "substring"
	case TierToken:
		return "token"
	default:
		return "none"
	}
}

// MarshalText renders the tier by name in JSON payloads and log attributes.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// stopWords are never used as tier-3 match terms.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "for": {}, "with": {}, "when": {},
	"how": {}, "take": {}, "should": {}, "i": {}, "tell": {}, "me": {}, "about": {},
}

const minTokenLength = 3

// recordNames holds the normalized names of one record.
type recordNames struct {
	brand   string
	generic string
}

func (n recordNames) each(fn func(name string) bool) bool {
	if n.brand != "" && fn(n.brand) {
		return true
	}
	return n.generic != "" && fn(n.generic)
}

// matcher returns the index of the first record it matches, or -1.
type matcher func(utterance string, names []recordNames) int

// tiers are tried in order; the first one that yields a record wins.
var tiers = []struct {
	tier  Tier
	match matcher
}{
	{TierExact, matchExact},
	{TierSubstring, matchSubstring},
	{TierToken, matchTokens},
}

// ResolveEntity returns the record the utterance refers to, or nil.
// The returned pointer aliases the caller's slice.
func ResolveEntity(utterance string, records []entities.MedicineRecord) *entities.MedicineRecord {
	rec, _ := ResolveEntityTier(utterance, records)
	return rec
}

// ResolveEntityTier is ResolveEntity that also reports the matching tier.
func ResolveEntityTier(utterance string, records []entities.MedicineRecord) (*entities.MedicineRecord, Tier) {
	return resolveNormalized(normalize(utterance), records)
}

func resolveNormalized(utterance string, records []entities.MedicineRecord) (*entities.MedicineRecord, Tier) {
	if len(records) == 0 {
		return nil, TierNone
	}

	names := make([]recordNames, len(records))
	for i := range records {
		names[i] = recordNames{
			brand:   normalize(records[i].BrandName),
			generic: normalize(records[i].GenericName),
		}
	}

	for _, t := range tiers {
		if i := t.match(utterance, names); i >= 0 {
			return &records[i], t.tier
		}
	}
	return nil, TierNone
}

func matchExact(utterance string, names []recordNames) int {
	if utterance == "" {
		return -1
	}
	for i, n := range names {
		if n.each(func(name string) bool { return name == utterance }) {
			return i
		}
	}
	return -1
}

func matchSubstring(utterance string, names []recordNames) int {
	if utterance == "" {
		return -1
	}
	for i, n := range names {
		if n.each(func(name string) bool {
			return strings.Contains(utterance, name) || strings.Contains(name, utterance)
		}) {
			return i
		}
	}
	return -1
}

func matchTokens(utterance string, names []recordNames) int {
	terms := queryTerms(utterance)
	if len(terms) == 0 {
		return -1
	}
	for i, n := range names {
		vocab := make(map[string]struct{})
		n.each(func(name string) bool {
			addWordSet(vocab, words(name))
			return false
		})
		for _, term := range terms {
			if _, ok := vocab[term]; ok {
				return i
			}
		}
	}
	return -1
}

// queryTerms keeps the significant tokens of the utterance and appends the
// bigrams formed by adjacent significant tokens.
func queryTerms(utterance string) []string {
	var kept []string
	for _, w := range words(utterance) {
		if runeLen(w) < minTokenLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}

	terms := append([]string(nil), kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// addWordSet adds the single words of a name and its adjacent bigrams.
func addWordSet(set map[string]struct{}, nameWords []string) {
	for i, w := range nameWords {
		set[w] = struct{}{}
		if i+1 < len(nameWords) {
			set[w+" "+nameWords[i+1]] = struct{}{}
		}
	}
}
