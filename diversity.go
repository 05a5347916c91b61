package questiongenerator

import "strings"

// DefaultDiversityThreshold is the Jaccard similarity above which an answer
// counts as a near-duplicate.
const DefaultDiversityThreshold = 0.8

// DiversityFilter rejects exact-duplicate questions and near-duplicate
// answers within a single generation call. Its state is scoped to one call
// and must not be reused across calls.
type DiversityFilter struct {
	threshold float64
	questions map[string]bool
	answers   []string
}

// NewDiversityFilter creates a filter with the given similarity threshold.
// A non-positive threshold selects the default.
func NewDiversityFilter(threshold float64) *DiversityFilter {
	if threshold <= 0 {
		threshold = DefaultDiversityThreshold
	}
	return &DiversityFilter{
		threshold: threshold,
		questions: make(map[string]bool),
	}
}

// Accept reports whether the question/answer pair is diverse enough to keep,
// recording it when accepted. A question identical to an accepted one, or an
// answer whose Jaccard similarity against any accepted answer exceeds the
// threshold (strictly greater), is rejected.
func (f *DiversityFilter) Accept(question, answer string) bool {
	if f.questions[question] {
		Debugf("diversity filter: rejecting duplicate question %q", question)
		return false
	}
	for _, prev := range f.answers {
		if jaccardSimilarity(answer, prev) > f.threshold {
			Debugf("diversity filter: rejecting near-duplicate answer for %q", question)
			return false
		}
	}
	f.questions[question] = true
	f.answers = append(f.answers, answer)
	return true
}

// jaccardSimilarity computes intersection-over-union of the two texts'
// lower-cased whitespace-tokenized word sets.
func jaccardSimilarity(a, b string) float64 {
	wordsA := whitespaceTokenSet(a)
	wordsB := whitespaceTokenSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for word := range wordsA {
		if wordsB[word] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func whitespaceTokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = true
	}
	return set
}
