package questiongenerator

import (
	"regexp"
	"sort"
	"strings"
)

// entityLabels are the named-entity kinds kept by entity extraction.
var entityLabels = map[string]bool{
	"PERSON":      true,
	"ORG":         true,
	"GPE":         true,
	"EVENT":       true,
	"PRODUCT":     true,
	"WORK_OF_ART": true,
}

// stopWords is a compact English stop-word list used by concept extraction.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "have": true, "his": true, "how": true, "its": true,
	"may": true, "new": true, "now": true, "old": true, "see": true,
	"two": true, "way": true, "who": true, "did": true, "get": true,
	"him": true, "that": true, "this": true, "with": true, "they": true,
	"from": true, "been": true, "will": true, "would": true, "there": true,
	"their": true, "what": true, "about": true, "which": true, "when": true,
	"were": true, "more": true, "some": true, "them": true, "then": true,
	"than": true, "into": true, "over": true, "such": true, "only": true,
	"other": true, "also": true, "these": true, "those": true, "each": true,
	"between": true, "because": true, "while": true, "where": true,
	"after": true, "before": true, "most": true, "both": true, "does": true,
	"being": true, "very": true, "should": true, "could": true, "through": true,
	"during": true, "under": true, "again": true, "same": true, "many": true,
}

var (
	wordPattern     = regexp.MustCompile(`[A-Za-z0-9']+`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// Tokenize splits text into lower-cased word tokens. It is the shared
// tokenizer for answer selection, snippet scoring and diversity checks.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// tokenSet builds a membership set from text tokens.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range Tokenize(text) {
		set[token] = true
	}
	return set
}

// Extractor pulls named entities, concept words and sentences out of a text
// context. All extraction degrades to empty results when the underlying
// analyzer is missing or fails; downstream components treat "no entities and
// no concepts" as valid input.
type Extractor struct {
	analyzer Analyzer
}

// NewExtractor creates an extractor over the given analyzer. A nil analyzer
// is allowed and yields the degraded (empty entities/concepts) behavior.
func NewExtractor(analyzer Analyzer) *Extractor {
	return &Extractor{analyzer: analyzer}
}

// Entities returns the named entities of the allowed kinds unioned with
// short common-noun phrases, deduplicated. Order is not guaranteed to be
// meaningful beyond first appearance.
func (e *Extractor) Entities(text string) []string {
	if e.analyzer == nil {
		return nil
	}

	seen := make(map[string]bool)
	var entities []string

	named, err := e.analyzer.NamedEntities(text)
	if err != nil {
		Debugf("entity extraction unavailable: %v", err)
	}
	for _, ent := range named {
		if !entityLabels[ent.Label] {
			continue
		}
		if !seen[ent.Text] {
			seen[ent.Text] = true
			entities = append(entities, ent.Text)
		}
	}

	for _, phrase := range e.nounPhrases(text) {
		if !seen[phrase] {
			seen[phrase] = true
			entities = append(entities, phrase)
		}
	}

	return entities
}

// nounPhrases collects runs of adjective/noun tokens of at most three words
// whose head is a common noun.
func (e *Extractor) nounPhrases(text string) []string {
	tokens, err := e.analyzer.TaggedTokens(text)
	if err != nil {
		Debugf("noun phrase extraction unavailable: %v", err)
		return nil
	}

	var phrases []string
	var run []TaggedToken
	flush := func() {
		if len(run) == 0 {
			return
		}
		head := run[len(run)-1]
		// Head must be a common noun, matching the "root is a NOUN" rule.
		if (head.Tag == "NN" || head.Tag == "NNS") && len(run) <= 3 {
			words := make([]string, len(run))
			for i, t := range run {
				words[i] = t.Text
			}
			phrases = append(phrases, strings.Join(words, " "))
		}
		run = nil
	}

	for _, token := range tokens {
		if strings.HasPrefix(token.Tag, "JJ") || strings.HasPrefix(token.Tag, "NN") {
			run = append(run, token)
			continue
		}
		flush()
	}
	flush()
	return phrases
}

// Concepts returns up to ten concept words ranked by frequency: noun and
// adjective tokens, lower-cased, longer than two characters, stop words
// removed. Frequency ties keep first-seen order.
func (e *Extractor) Concepts(text string) []string {
	if e.analyzer == nil {
		return nil
	}
	tokens, err := e.analyzer.TaggedTokens(text)
	if err != nil {
		Debugf("concept extraction unavailable: %v", err)
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for _, token := range tokens {
		if !strings.HasPrefix(token.Tag, "NN") && !strings.HasPrefix(token.Tag, "JJ") {
			continue
		}
		word := strings.ToLower(token.Text)
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		if counts[word] == 0 {
			firstSeen[word] = len(order)
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > 10 {
		order = order[:10]
	}
	return order
}

// SplitSentences segments text into trimmed sentences. It prefers the
// analyzer's segmentation and falls back to punctuation splitting so that
// sentence-driven components keep working without linguistic signal.
func (e *Extractor) SplitSentences(text string) []string {
	if e.analyzer != nil {
		if sentences, err := e.analyzer.Sentences(text); err == nil && len(sentences) > 0 {
			out := make([]string, 0, len(sentences))
			for _, s := range sentences {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					out = append(out, trimmed)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}

	var out []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
