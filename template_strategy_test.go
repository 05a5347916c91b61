package questiongenerator

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededTemplateStrategy(extractor *Extractor) *TemplateStrategy {
	return NewTemplateStrategyWithRand(extractor, rand.New(rand.NewSource(42)))
}

func TestTemplateStrategyFillsSlotsFromEntities(t *testing.T) {
	analyzer := &fakeAnalyzer{
		entities: []NamedEntity{{Text: "Alan Turing", Label: "PERSON"}},
	}
	strategy := newSeededTemplateStrategy(NewExtractor(analyzer))

	cells := []GenerationCell{{Taxonomy: Remember, Difficulty: Easy, Count: 3}}
	records, err := strategy.Generate(context.Background(), "Alan Turing founded computer science. He broke codes.", cells, "CS", "")
	require.NoError(t, err)
	require.Len(t, records, 3)

	for _, record := range records {
		assert.Contains(t, record.Question, "Alan Turing")
		assert.NotEmpty(t, record.Answer)
		assert.Equal(t, Remember, record.TaxonomyLevel)
		assert.Equal(t, Easy, record.Difficulty)
		assert.Equal(t, "CS", record.Subject)
	}
}

func TestTemplateStrategyFallsBackToMainConcept(t *testing.T) {
	// No analyzer means no entities and no concepts: every single-slot
	// template must resolve its slot to the literal "the main concept".
	strategy := newSeededTemplateStrategy(NewExtractor(nil))

	cells := []GenerationCell{{Taxonomy: Remember, Difficulty: Easy, Count: 10}}
	records, err := strategy.Generate(context.Background(), "Some text without extractable signal.", cells, "General", "")
	require.NoError(t, err)
	require.Len(t, records, 10)

	for _, record := range records {
		assert.Contains(t, record.Question, "the main concept")
	}
}

func TestTemplateStrategyTwoSlotDowngrade(t *testing.T) {
	// Understand has a two-slot template but only one concept is available,
	// so any pick of it must downgrade to a one-slot template. Across many
	// iterations no question may contain an unfilled or misfilled slot.
	analyzer := &fakeAnalyzer{
		tokens: []TaggedToken{{Text: "learning", Tag: "VBG"}, {Text: "science", Tag: "NN"}},
	}
	strategy := newSeededTemplateStrategy(NewExtractor(analyzer))

	cells := []GenerationCell{{Taxonomy: Understand, Difficulty: Medium, Count: 20}}
	records, err := strategy.Generate(context.Background(), "Science is broad. It has many fields.", cells, "General", "")
	require.NoError(t, err)
	require.Len(t, records, 20)

	for _, record := range records {
		assert.NotContains(t, record.Question, "%s")
		assert.NotContains(t, record.Question, "%!s")
	}
}

func TestTemplateStrategyUsesTwoDistinctEntities(t *testing.T) {
	analyzer := &fakeAnalyzer{
		entities: []NamedEntity{
			{Text: "Paris", Label: "GPE"},
			{Text: "Berlin", Label: "GPE"},
		},
	}
	strategy := newSeededTemplateStrategy(NewExtractor(analyzer))

	cells := []GenerationCell{{Taxonomy: Analyze, Difficulty: Hard, Count: 30}}
	records, err := strategy.Generate(context.Background(), "Paris is a city. Berlin is a city.", cells, "Geography", "")
	require.NoError(t, err)

	sawTwoSlot := false
	for _, record := range records {
		if strings.Contains(record.Question, "Paris") && strings.Contains(record.Question, "Berlin") {
			sawTwoSlot = true
		}
		assert.NotContains(t, record.Question, "%s")
	}
	assert.True(t, sawTwoSlot, "expected at least one two-slot question using both entities")
}

func TestTemplateStrategySkipsZeroCountCells(t *testing.T) {
	strategy := newSeededTemplateStrategy(NewExtractor(nil))

	cells := []GenerationCell{
		{Taxonomy: Remember, Difficulty: Easy, Count: 0},
		{Taxonomy: Understand, Difficulty: Medium, Count: 2},
	}
	records, err := strategy.Generate(context.Background(), "One sentence. Another sentence.", cells, "General", "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, Understand, record.TaxonomyLevel)
	}
}

func TestTemplateStrategyDeterministicWithSeed(t *testing.T) {
	run := func() []QuestionRecord {
		analyzer := &fakeAnalyzer{
			entities: []NamedEntity{{Text: "Go", Label: "PRODUCT"}, {Text: "Rust", Label: "PRODUCT"}},
		}
		strategy := NewTemplateStrategyWithRand(NewExtractor(analyzer), rand.New(rand.NewSource(7)))
		cells := []GenerationCell{{Taxonomy: Evaluate, Difficulty: Medium, Count: 5}}
		records, err := strategy.Generate(context.Background(), "Go is a language. Rust is a language.", cells, "PL", "")
		require.NoError(t, err)
		return records
	}

	assert.Equal(t, run(), run())
}
