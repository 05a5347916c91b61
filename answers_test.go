package questiongenerator

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

const aiContext = "AI is a field of computer science. Machine learning is a subset of AI. Deep learning uses neural networks."

func newTestSynthesizer() *AnswerSynthesizer {
	return NewAnswerSynthesizer(NewExtractor(nil))
}

func TestSynthesizeRememberPicksBestOverlap(t *testing.T) {
	synth := newTestSynthesizer()

	answer := synth.Synthesize(aiContext, "What is machine learning?", Remember)
	assert.Equal(t, "Machine learning is a subset of AI.", answer)
}

func TestSynthesizeRememberFirstWinsOnTie(t *testing.T) {
	synth := newTestSynthesizer()
	context := "Alpha beta gamma. Alpha beta delta."

	// Both sentences overlap the question equally; the first scanned wins.
	answer := synth.Synthesize(context, "alpha beta?", Remember)
	assert.Equal(t, "Alpha beta gamma.", answer)
}

func TestSynthesizeRememberNoOverlapReturnsFirstSentence(t *testing.T) {
	synth := newTestSynthesizer()

	answer := synth.Synthesize(aiContext, "zzz qqq xxx", Remember)
	assert.Equal(t, "AI is a field of computer science.", answer)
}

func TestSynthesizeUnderstandJoinsFirstTwoSentences(t *testing.T) {
	synth := newTestSynthesizer()

	answer := synth.Synthesize(aiContext, "Explain the concept of AI.", Understand)
	assert.Equal(t, "AI is a field of computer science. Machine learning is a subset of AI.", answer)
}

func TestSynthesizeUnderstandWithSingleSentence(t *testing.T) {
	synth := newTestSynthesizer()

	answer := synth.Synthesize("Only one sentence here.", "Explain.", Understand)
	assert.Equal(t, "Only one sentence here.", answer)
}

func TestSynthesizeApplyAndAnalyzeUseAnalysisFrame(t *testing.T) {
	synth := newTestSynthesizer()

	for _, level := range []TaxonomyLevel{Apply, Analyze} {
		answer := synth.Synthesize(aiContext, "q", level)
		assert.Contains(t, answer, "analysis of the given information", "level %s", level)
		assert.Contains(t, answer, "Deep learning uses neural networks.", "level %s", level)
	}
}

func TestSynthesizeEvaluateAndCreateUseCriticalThinkingFrame(t *testing.T) {
	synth := newTestSynthesizer()

	for _, level := range []TaxonomyLevel{Evaluate, Create} {
		answer := synth.Synthesize(aiContext, "q", level)
		assert.Contains(t, answer, "critical thinking and evaluation", "level %s", level)
		assert.NotContains(t, answer, "Deep learning", "level %s", level)
	}
}

func TestSnippetSelectsMostRelevantSentences(t *testing.T) {
	synth := newTestSynthesizer()

	snippet := synth.Snippet(aiContext, "What is machine learning?", 200)
	assert.True(t, strings.HasPrefix(snippet, "Machine learning is a subset of AI."), "snippet: %q", snippet)
}

func TestSnippetTruncatesWithEllipsis(t *testing.T) {
	synth := newTestSynthesizer()

	snippet := synth.Snippet(aiContext, "What is AI?", 30)
	assert.Len(t, snippet, 33)
	assert.True(t, strings.HasSuffix(snippet, "..."))
}

func TestSnippetTruncationKeepsRuneBoundaries(t *testing.T) {
	synth := newTestSynthesizer()
	context := "ααα βββ γγγ. δδδ εεε."

	snippet := synth.Snippet(context, "ααα?", 8)
	assert.True(t, utf8.ValidString(snippet))
	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.Equal(t, "ααα βββ ...", snippet)
}

func TestSnippetKeepsOriginalOrderAmongEqualScores(t *testing.T) {
	synth := newTestSynthesizer()
	context := "First point about cats. Second point about cats."

	snippet := synth.Snippet(context, "cats?", 200)
	assert.Equal(t, "First point about cats. Second point about cats.", snippet)
}

func TestSynthesizeEmptyContext(t *testing.T) {
	synth := newTestSynthesizer()
	assert.Empty(t, synth.Synthesize("", "q", Remember))
}
