package questiongenerator

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// GenerationStrategy is the shared contract both generation paths implement.
// A strategy produces question records for the requested cells; an empty
// result signals the caller to try the next strategy, never a hard failure.
type GenerationStrategy interface {
	Generate(ctx context.Context, text string, cells []GenerationCell, subject, topic string) ([]QuestionRecord, error)
}

// TemplateStrategy generates questions locally from fixed per-taxonomy
// templates filled with entities and concepts extracted from the context.
// It needs no external model and never fails: missing linguistic signal
// degrades through the slot-filling fallback chain. Repeated random
// template/slot choices may legitimately repeat; no diversity filtering
// applies in template mode.
type TemplateStrategy struct {
	extractor  *Extractor
	synth      *AnswerSynthesizer
	rng        *rand.Rand
	snippetLen int
}

// NewTemplateStrategy creates a template strategy with a time-seeded random
// source.
func NewTemplateStrategy(extractor *Extractor) *TemplateStrategy {
	return NewTemplateStrategyWithRand(extractor, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewTemplateStrategyWithRand creates a template strategy with an injected
// random source, for deterministic tests.
func NewTemplateStrategyWithRand(extractor *Extractor, rng *rand.Rand) *TemplateStrategy {
	return &TemplateStrategy{
		extractor:  extractor,
		synth:      NewAnswerSynthesizer(extractor),
		rng:        rng,
		snippetLen: DefaultSnippetLength,
	}
}

// SetSnippetLength overrides the context snippet character budget.
func (t *TemplateStrategy) SetSnippetLength(n int) {
	if n > 0 {
		t.snippetLen = n
	}
}

// Generate produces records for every non-zero cell in order. Entities and
// concepts are extracted once per call and shared across cells.
func (t *TemplateStrategy) Generate(ctx context.Context, text string, cells []GenerationCell, subject, topic string) ([]QuestionRecord, error) {
	entities := t.extractor.Entities(text)
	concepts := t.extractor.Concepts(text)

	var records []QuestionRecord
	for _, cell := range cells {
		if cell.Count <= 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return records, err
		}
		for i := 0; i < cell.Count; i++ {
			question := t.buildQuestion(cell.Taxonomy, entities, concepts)
			answer := t.synth.Synthesize(text, question, cell.Taxonomy)
			records = append(records, QuestionRecord{
				Question:       question,
				Answer:         answer,
				TaxonomyLevel:  cell.Taxonomy,
				Difficulty:     cell.Difficulty,
				QuestionType:   ClassifyQuestionType(question),
				ContextSnippet: t.synth.Snippet(text, question, t.snippetLen),
				Subject:        subject,
				Topic:          topic,
			})
		}
	}
	return records, nil
}

// buildQuestion picks a random template for the taxonomy level and fills its
// slots. Preference order for fills: entities, then concepts, then the
// literal "the main concept". Two-slot templates that cannot be filled fall
// back to a one-slot template from the same list, and finally to a generic
// sentence naming the taxonomy level.
func (t *TemplateStrategy) buildQuestion(level TaxonomyLevel, entities, concepts []string) string {
	templates := TemplatesFor(level).Templates
	template := templates[t.rng.Intn(len(templates))]

	switch slotCount(template) {
	case 0:
		return template
	case 1:
		return fmt.Sprintf(template, t.pickSingle(entities, concepts))
	default:
		if len(entities) >= 2 {
			pair := t.samplePair(entities)
			return fmt.Sprintf(template, pair[0], pair[1])
		}
		if len(concepts) >= 2 {
			pair := t.samplePair(concepts)
			return fmt.Sprintf(template, pair[0], pair[1])
		}
		// Not enough material for two slots: retry with a simpler template.
		var simpler []string
		for _, candidate := range templates {
			if slotCount(candidate) <= 1 {
				simpler = append(simpler, candidate)
			}
		}
		if len(simpler) > 0 {
			template = simpler[t.rng.Intn(len(simpler))]
			if slotCount(template) == 0 {
				return template
			}
			return fmt.Sprintf(template, t.pickSingle(entities, concepts))
		}
		return fmt.Sprintf("Explain the main concepts in the text related to %s.", level)
	}
}

// pickSingle selects a fill value for one slot.
func (t *TemplateStrategy) pickSingle(entities, concepts []string) string {
	if len(entities) > 0 {
		return entities[t.rng.Intn(len(entities))]
	}
	if len(concepts) > 0 {
		return concepts[t.rng.Intn(len(concepts))]
	}
	return "the main concept"
}

// samplePair samples two distinct values without replacement.
func (t *TemplateStrategy) samplePair(values []string) [2]string {
	i := t.rng.Intn(len(values))
	j := t.rng.Intn(len(values) - 1)
	if j >= i {
		j++
	}
	return [2]string{values[i], values[j]}
}
