package questiongenerator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiversityFilterRejectsIdenticalAnswers(t *testing.T) {
	filter := NewDiversityFilter(0)

	assert.True(t, filter.Accept("What is AI?", "AI is machine intelligence"))
	assert.False(t, filter.Accept("Define AI.", "AI is machine intelligence"))
}

func TestDiversityFilterRejectsDuplicateQuestions(t *testing.T) {
	filter := NewDiversityFilter(0)

	assert.True(t, filter.Accept("What is AI?", "first answer text here"))
	assert.False(t, filter.Accept("What is AI?", "completely unrelated words instead"))
}

func TestDiversityFilterAcceptsDisjointAnswers(t *testing.T) {
	filter := NewDiversityFilter(0)

	assert.True(t, filter.Accept("q1", "alpha beta gamma"))
	assert.True(t, filter.Accept("q2", "delta epsilon zeta"))
}

func TestJaccardBoundary(t *testing.T) {
	shared := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"}

	// 8 shared words, one unique each side: 8/10 = 0.8 exactly. The
	// threshold is strictly greater than, so this pair is kept.
	first := strings.Join(append(append([]string{}, shared...), "only1"), " ")
	second := strings.Join(append(append([]string{}, shared...), "only2"), " ")
	assert.InDelta(t, 0.8, jaccardSimilarity(first, second), 1e-9)

	filter := NewDiversityFilter(0)
	assert.True(t, filter.Accept("q1", first))
	assert.True(t, filter.Accept("q2", second))

	// 9 of 10 words shared: 0.9 similarity, rejected.
	ten := strings.Join(append(append([]string{}, shared...), "t9", "t10"), " ")
	nine := strings.Join(append(append([]string{}, shared...), "t9"), " ")
	assert.InDelta(t, 0.9, jaccardSimilarity(ten, nine), 1e-9)

	filter = NewDiversityFilter(0)
	assert.True(t, filter.Accept("q1", ten))
	assert.False(t, filter.Accept("q2", nine))
}

func TestJaccardSimilarityEmptyInput(t *testing.T) {
	assert.Zero(t, jaccardSimilarity("", "some words"))
	assert.Zero(t, jaccardSimilarity("some words", ""))
}
