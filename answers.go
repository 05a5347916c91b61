package questiongenerator

import (
	"sort"
	"strings"
)

// DefaultSnippetLength is the default character budget for context snippets.
const DefaultSnippetLength = 200

// AnswerSynthesizer produces extractive answers from a context, driven by
// the question's taxonomy level. Answers are heuristic selections from the
// context, not generated text: the contract is a non-empty string whenever
// the context is non-empty.
type AnswerSynthesizer struct {
	extractor *Extractor
}

// NewAnswerSynthesizer creates a synthesizer over the given extractor.
func NewAnswerSynthesizer(extractor *Extractor) *AnswerSynthesizer {
	return &AnswerSynthesizer{extractor: extractor}
}

// Synthesize builds an answer for the question from the context. The
// strategy depends only on the taxonomy level, never on difficulty.
func (s *AnswerSynthesizer) Synthesize(context, question string, level TaxonomyLevel) string {
	sentences := s.extractor.SplitSentences(context)
	if len(sentences) == 0 {
		return ""
	}

	switch level {
	case Remember:
		// Pick the sentence with the highest token overlap against the
		// question. Strictly-greater comparison: the first best sentence
		// scanned wins ties.
		questionWords := tokenSet(question)
		best := ""
		maxOverlap := 0
		for _, sentence := range sentences {
			overlap := overlapCount(questionWords, sentence)
			if overlap > maxOverlap {
				maxOverlap = overlap
				best = sentence
			}
		}
		if best == "" {
			return sentences[0]
		}
		return best

	case Understand:
		return strings.Join(firstN(sentences, 2), " ")

	case Apply, Analyze:
		return "Based on the context: " + strings.Join(firstN(sentences, 3), " ") +
			". This requires analysis of the given information and application of relevant concepts."

	default: // Evaluate, Create
		return "This question requires critical thinking and evaluation. Consider the following context: " +
			strings.Join(firstN(sentences, 2), " ") +
			" and formulate your response based on evidence and reasoning."
	}
}

// Snippet extracts the context fragment most relevant to the question: the
// two highest-scoring sentences by token overlap, hard-truncated to maxLen
// characters with an ellipsis marker. A stable sort keeps the original
// sentence order among equal scores.
func (s *AnswerSynthesizer) Snippet(context, question string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSnippetLength
	}
	sentences := s.extractor.SplitSentences(context)
	if len(sentences) == 0 {
		return ""
	}

	questionWords := tokenSet(question)
	scored := make([]string, len(sentences))
	copy(scored, sentences)
	scores := make(map[string]int, len(sentences))
	for _, sentence := range sentences {
		scores[sentence] = overlapCount(questionWords, sentence)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scores[scored[i]] > scores[scored[j]]
	})

	snippet := strings.Join(firstN(scored, 2), " ")
	if runes := []rune(snippet); len(runes) > maxLen {
		snippet = string(runes[:maxLen]) + "..."
	}
	return snippet
}

// overlapCount counts how many of the sentence's tokens appear in the word set.
func overlapCount(words map[string]bool, sentence string) int {
	count := 0
	for token := range tokenSet(sentence) {
		if words[token] {
			count++
		}
	}
	return count
}

func firstN(items []string, n int) []string {
	if len(items) < n {
		return items
	}
	return items[:n]
}
