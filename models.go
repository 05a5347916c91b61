package questiongenerator

import "strings"

// TaxonomyLevel classifies a question by cognitive complexity, from simple
// recall up to open-ended creation.
type TaxonomyLevel string

const (
	Remember   TaxonomyLevel = "remember"
	Understand TaxonomyLevel = "understand"
	Apply      TaxonomyLevel = "apply"
	Analyze    TaxonomyLevel = "analyze"
	Evaluate   TaxonomyLevel = "evaluate"
	Create     TaxonomyLevel = "create"
)

// AllTaxonomyLevels returns every taxonomy level in order of increasing
// cognitive complexity. The order matters: distribution and template lookup
// iterate levels in this sequence.
func AllTaxonomyLevels() []TaxonomyLevel {
	return []TaxonomyLevel{Remember, Understand, Apply, Analyze, Evaluate, Create}
}

// DifficultyLevel classifies a question on an easy/medium/hard scale,
// independent of its taxonomy level.
type DifficultyLevel string

const (
	Easy   DifficultyLevel = "easy"
	Medium DifficultyLevel = "medium"
	Hard   DifficultyLevel = "hard"
)

// AllDifficultyLevels returns every difficulty level in ascending order.
func AllDifficultyLevels() []DifficultyLevel {
	return []DifficultyLevel{Easy, Medium, Hard}
}

// ParseTaxonomyLevel matches a string against the known taxonomy levels,
// case-insensitively. Returns false if the value is not a known level.
func ParseTaxonomyLevel(s string) (TaxonomyLevel, bool) {
	normalized := TaxonomyLevel(strings.ToLower(strings.TrimSpace(s)))
	for _, level := range AllTaxonomyLevels() {
		if level == normalized {
			return level, true
		}
	}
	return "", false
}

// ParseDifficultyLevel matches a string against the known difficulty levels,
// case-insensitively. Returns false if the value is not a known level.
func ParseDifficultyLevel(s string) (DifficultyLevel, bool) {
	normalized := DifficultyLevel(strings.ToLower(strings.TrimSpace(s)))
	for _, level := range AllDifficultyLevels() {
		if level == normalized {
			return level, true
		}
	}
	return "", false
}

// RecoverTaxonomyLevel maps a possibly malformed model output string onto a
// taxonomy level. Exact match first, then a case-insensitive substring check
// against each known value, defaulting to Understand when nothing matches.
func RecoverTaxonomyLevel(s string) TaxonomyLevel {
	if level, ok := ParseTaxonomyLevel(s); ok {
		return level
	}
	lower := strings.ToLower(s)
	for _, level := range AllTaxonomyLevels() {
		if strings.Contains(lower, string(level)) {
			return level
		}
	}
	return Understand
}

// RecoverDifficultyLevel maps a possibly malformed model output string onto a
// difficulty level, defaulting to Medium when nothing matches.
func RecoverDifficultyLevel(s string) DifficultyLevel {
	if level, ok := ParseDifficultyLevel(s); ok {
		return level
	}
	lower := strings.ToLower(s)
	for _, level := range AllDifficultyLevels() {
		if strings.Contains(lower, string(level)) {
			return level
		}
	}
	return Medium
}

// GenerationCell describes how many questions are wanted for one
// taxonomy/difficulty combination.
type GenerationCell struct {
	Taxonomy   TaxonomyLevel   `json:"taxonomy_level"`
	Difficulty DifficultyLevel `json:"difficulty"`
	Count      int             `json:"count"`
}

// QuestionRecord is a single generated question/answer pair with its
// classification tags. Records are value objects: created by a strategy,
// never mutated after being returned to the caller.
type QuestionRecord struct {
	Question       string          `json:"question"`
	Answer         string          `json:"answer"`
	TaxonomyLevel  TaxonomyLevel   `json:"taxonomy_level"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	QuestionType   string          `json:"question_type"`
	ContextSnippet string          `json:"context_snippet"`
	Subject        string          `json:"subject"`
	Topic          string          `json:"topic,omitempty"`
	Marks          int             `json:"marks,omitempty"`
}

// GenerationRequest represents a request to generate a question set.
type GenerationRequest struct {
	Context          string            `json:"context"`
	Subject          string            `json:"subject"`
	Topic            string            `json:"topic,omitempty"`
	TaxonomyLevels   []TaxonomyLevel   `json:"taxonomy_levels,omitempty"`
	DifficultyLevels []DifficultyLevel `json:"difficulty_levels,omitempty"`
	NumQuestions     int               `json:"num_questions"`
	UseRemote        bool              `json:"use_remote,omitempty"`
}

// QuestionSpec is one line item of a question paper specification.
type QuestionSpec struct {
	Taxonomy   TaxonomyLevel   `json:"taxonomy_level"`
	Difficulty DifficultyLevel `json:"difficulty"`
	Count      int             `json:"count"`
	Marks      int             `json:"marks"`
}

// PaperSpec describes a complete question paper to be generated.
type PaperSpec struct {
	Title        string         `json:"title"`
	Instructions string         `json:"instructions"`
	Subject      string         `json:"subject"`
	Topic        string         `json:"topic,omitempty"`
	UseRemote    bool           `json:"use_remote,omitempty"`
	Specs        []QuestionSpec `json:"question_specs"`
}

// PaperQuestion is one numbered entry in a question paper.
type PaperQuestion struct {
	QuestionNumber int             `json:"question_number"`
	Question       string          `json:"question"`
	Marks          int             `json:"marks"`
	TaxonomyLevel  TaxonomyLevel   `json:"taxonomy_level"`
	Difficulty     DifficultyLevel `json:"difficulty"`
}

// AnswerKeyEntry pairs a question number with its model answer.
type AnswerKeyEntry struct {
	QuestionNumber int    `json:"question_number"`
	Answer         string `json:"answer"`
	ContextSnippet string `json:"context_snippet,omitempty"`
}

// QuestionPaper is an assembled paper: ordered questions, an answer key in
// the same order, and the accumulated mark total. Built once per generation
// call and never mutated afterwards.
type QuestionPaper struct {
	Title        string           `json:"title"`
	Instructions string           `json:"instructions"`
	TotalMarks   int              `json:"total_marks"`
	Questions    []PaperQuestion  `json:"questions"`
	AnswerKey    []AnswerKeyEntry `json:"answer_key"`
}
