package questiongenerator

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
)

// Caller contract violations are the only failures surfaced as errors;
// everything downstream degrades with a logged warning instead.
var (
	ErrEmptyContext = errors.New("context text must not be empty")
	ErrInvalidCount = errors.New("requested question count must not be negative")
	ErrEmptySpecs   = errors.New("paper specification must contain at least one question spec")
)

const defaultMarks = 5

// QuestionGenerator is the public entry point of the engine. It owns the two
// generation strategies and composes them: try the remote strategy when the
// caller asked for it, fall back to the local template strategy whenever the
// remote path yields nothing.
type QuestionGenerator struct {
	remote GenerationStrategy
	local  GenerationStrategy
}

// NewQuestionGenerator wires the default strategies. An empty API key
// disables the remote path entirely; template generation still works.
func NewQuestionGenerator(apiKey string) *QuestionGenerator {
	extractor := NewExtractor(NewProseAnalyzer())
	g := &QuestionGenerator{
		local: NewTemplateStrategy(extractor),
	}
	if apiKey != "" {
		g.remote = NewRemoteStrategy(apiKey, extractor)
	}
	return g
}

// NewQuestionGeneratorWithStrategies builds a generator from explicit
// strategies. Tests use this to substitute deterministic fakes.
func NewQuestionGeneratorWithStrategies(remote, local GenerationStrategy) *QuestionGenerator {
	return &QuestionGenerator{remote: remote, local: local}
}

// GenerateQuestionSet generates a flat list of question records for the
// request. Missing taxonomy or difficulty lists default to all known values.
// Records preserve the distributor's cell order; a cell may under-deliver
// when the remote path rejects near-duplicates, and no top-up is attempted.
func (g *QuestionGenerator) GenerateQuestionSet(ctx context.Context, req GenerationRequest) ([]QuestionRecord, error) {
	if strings.TrimSpace(req.Context) == "" {
		return nil, ErrEmptyContext
	}
	if req.NumQuestions < 0 {
		return nil, ErrInvalidCount
	}

	taxonomyLevels := req.TaxonomyLevels
	if len(taxonomyLevels) == 0 {
		taxonomyLevels = AllTaxonomyLevels()
	}
	difficultyLevels := req.DifficultyLevels
	if len(difficultyLevels) == 0 {
		difficultyLevels = AllDifficultyLevels()
	}

	cells := DistributeQuestions(req.NumQuestions, taxonomyLevels, difficultyLevels)
	records, err := g.generate(ctx, req.Context, cells, req.Subject, req.Topic, req.UseRemote)
	if err != nil {
		return nil, err
	}

	if got, want := len(records), TotalCount(cells); got < want {
		log.Printf("Warning: generated %d questions out of %d requested", got, want)
	}
	return records, nil
}

// GenerateQuestionPaper generates a numbered question paper with an answer
// key and accumulated mark total from a paper specification.
func (g *QuestionGenerator) GenerateQuestionPaper(ctx context.Context, text string, spec PaperSpec) (*QuestionPaper, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContext
	}
	if len(spec.Specs) == 0 {
		return nil, ErrEmptySpecs
	}

	title := spec.Title
	if title == "" {
		title = "Generated Question Paper"
	}
	instructions := spec.Instructions
	if instructions == "" {
		instructions = "Answer all questions based on the given context."
	}

	cells := make([]GenerationCell, 0, len(spec.Specs))
	marks := make(map[GenerationCell]int, len(spec.Specs))
	for _, qs := range spec.Specs {
		cell := GenerationCell{Taxonomy: qs.Taxonomy, Difficulty: qs.Difficulty, Count: qs.Count}
		cells = append(cells, cell)
		key := GenerationCell{Taxonomy: qs.Taxonomy, Difficulty: qs.Difficulty}
		if _, ok := marks[key]; !ok {
			marks[key] = qs.Marks
		}
	}

	records, err := g.generate(ctx, text, cells, spec.Subject, spec.Topic, spec.UseRemote)
	if err != nil {
		return nil, err
	}

	paper := &QuestionPaper{
		Title:        title,
		Instructions: instructions,
	}
	for i, record := range records {
		number := i + 1
		mark, ok := marks[GenerationCell{Taxonomy: record.TaxonomyLevel, Difficulty: record.Difficulty}]
		if !ok || mark <= 0 {
			mark = defaultMarks
		}
		paper.Questions = append(paper.Questions, PaperQuestion{
			QuestionNumber: number,
			Question:       record.Question,
			Marks:          mark,
			TaxonomyLevel:  record.TaxonomyLevel,
			Difficulty:     record.Difficulty,
		})
		paper.AnswerKey = append(paper.AnswerKey, AnswerKeyEntry{
			QuestionNumber: number,
			Answer:         record.Answer,
			ContextSnippet: record.ContextSnippet,
		})
		paper.TotalMarks += mark
	}

	if got, want := len(records), TotalCount(cells); got < want {
		log.Printf("Warning: paper contains %d questions out of %d requested", got, want)
	}
	return paper, nil
}

// generate runs the strategy selection and fallback composition.
func (g *QuestionGenerator) generate(ctx context.Context, text string, cells []GenerationCell, subject, topic string, useRemote bool) ([]QuestionRecord, error) {
	if useRemote && g.remote != nil {
		records, err := g.remote.Generate(ctx, text, cells, subject, topic)
		if err != nil {
			log.Printf("Warning: remote strategy error, falling back to templates: %v", err)
		} else if len(records) > 0 {
			return records, nil
		} else {
			log.Printf("Warning: remote strategy returned nothing, falling back to templates")
		}
	}
	return g.local.Generate(ctx, text, cells, subject, topic)
}

// GenerationID returns a short random identifier for one generation call,
// used to name transcript logs and stored sets.
func GenerationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
