package questiongenerator

import (
	"github.com/jdkato/prose/v2"
)

// TaggedToken is a word token with its part-of-speech tag (Penn Treebank).
type TaggedToken struct {
	Text string
	Tag  string
}

// NamedEntity is a span of text with a named-entity label.
type NamedEntity struct {
	Text  string
	Label string
}

// Analyzer is the linguistic analysis contract the extractor depends on.
// Implementations may fail on individual calls; callers treat any error as
// "no signal" and degrade rather than abort.
type Analyzer interface {
	Sentences(text string) ([]string, error)
	TaggedTokens(text string) ([]TaggedToken, error)
	NamedEntities(text string) ([]NamedEntity, error)
}

// ProseAnalyzer implements Analyzer on top of the prose NLP library.
type ProseAnalyzer struct{}

// NewProseAnalyzer creates a prose-backed analyzer.
func NewProseAnalyzer() *ProseAnalyzer {
	return &ProseAnalyzer{}
}

// Sentences segments text into sentences.
func (a *ProseAnalyzer) Sentences(text string) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, err
	}
	sentences := doc.Sentences()
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		out = append(out, s.Text)
	}
	return out, nil
}

// TaggedTokens tokenizes text and tags each token with its part of speech.
func (a *ProseAnalyzer) TaggedTokens(text string) ([]TaggedToken, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, err
	}
	tokens := doc.Tokens()
	out := make([]TaggedToken, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, TaggedToken{Text: t.Text, Tag: t.Tag})
	}
	return out, nil
}

// NamedEntities runs named-entity recognition over the text.
func (a *ProseAnalyzer) NamedEntities(text string) ([]NamedEntity, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}
	entities := doc.Entities()
	out := make([]NamedEntity, 0, len(entities))
	for _, e := range entities {
		out = append(out, NamedEntity{Text: e.Text, Label: e.Label})
	}
	return out, nil
}
