package questiongenerator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter is the slice of the OpenAI client the remote strategy needs.
// *openai.Client satisfies it; tests substitute a deterministic fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// RemoteStrategy generates questions by delegating to an external generative
// model. One orchestration call means exactly one model invocation: the
// prompt enumerates every requested taxonomy/difficulty/count cell and the
// model returns a structured batch. Any transport or parse failure yields an
// empty result so the caller can fall back to the template strategy.
type RemoteStrategy struct {
	client     chatCompleter
	model      string
	synth      *AnswerSynthesizer
	threshold  float64
	snippetLen int
}

// NewRemoteStrategy creates a remote strategy backed by the OpenAI API.
func NewRemoteStrategy(apiKey string, extractor *Extractor) *RemoteStrategy {
	return NewRemoteStrategyWithClient(openai.NewClient(apiKey), extractor)
}

// NewRemoteStrategyWithClient creates a remote strategy with an injected
// chat-completion client.
func NewRemoteStrategyWithClient(client chatCompleter, extractor *Extractor) *RemoteStrategy {
	return &RemoteStrategy{
		client:     client,
		model:      openai.GPT4o,
		synth:      NewAnswerSynthesizer(extractor),
		threshold:  DefaultDiversityThreshold,
		snippetLen: DefaultSnippetLength,
	}
}

// SetModel overrides the chat model name.
func (r *RemoteStrategy) SetModel(model string) {
	if model != "" {
		r.model = model
	}
}

// SetDiversityThreshold overrides the answer similarity threshold.
func (r *RemoteStrategy) SetDiversityThreshold(threshold float64) {
	if threshold > 0 {
		r.threshold = threshold
	}
}

// SetSnippetLength overrides the context snippet character budget.
func (r *RemoteStrategy) SetSnippetLength(n int) {
	if n > 0 {
		r.snippetLen = n
	}
}

// Generate requests all cells in one model call, then parses, validates and
// diversity-filters the returned items. Failures are logged and produce an
// empty result, never an error the caller must handle.
func (r *RemoteStrategy) Generate(ctx context.Context, text string, cells []GenerationCell, subject, topic string) ([]QuestionRecord, error) {
	active := make([]GenerationCell, 0, len(cells))
	for _, cell := range cells {
		if cell.Count > 0 {
			active = append(active, cell)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}

	prompt := r.buildPrompt(text, active)
	if logger := GetGlobalLogger(); logger != nil {
		logger.LogLLMRequest("RemoteStrategy", prompt)
	}

	resp, err := r.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:            r.model,
			Temperature:      0.9,
			PresencePenalty:  0.6,
			FrequencyPenalty: 0.6,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert question generator. Generate unique question/answer pairs classified by cognitive taxonomy level and difficulty.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        "submit_questions",
						Description: "Submit generated questions with answers and classification tags",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"questions": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"question": map[string]interface{}{
												"type":        "string",
												"description": "The question text",
											},
											"answer": map[string]interface{}{
												"type":        "string",
												"description": "Detailed answer to the question",
											},
											"taxonomy_level": map[string]interface{}{
												"type":        "string",
												"description": "One of: remember, understand, apply, analyze, evaluate, create",
											},
											"difficulty": map[string]interface{}{
												"type":        "string",
												"description": "One of: easy, medium, hard",
											},
										},
										"required": []string{"question", "answer", "taxonomy_level", "difficulty"},
									},
								},
							},
							"required": []string{"questions"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "submit_questions",
				},
			},
		},
	)
	if err != nil {
		log.Printf("Warning: remote generation failed, falling back: %v", err)
		return nil, nil
	}

	items, err := parseSubmission(resp)
	if err != nil {
		log.Printf("Warning: could not parse remote response, falling back: %v", err)
		return nil, nil
	}
	if logger := GetGlobalLogger(); logger != nil {
		logger.LogLLMResponse("RemoteStrategy", fmt.Sprintf("%d parsed items", len(items)))
	}

	records := r.assembleRecords(text, active, items, subject, topic)

	if got, want := len(records), TotalCount(active); got < want {
		log.Printf("Warning: only generated %d diverse questions out of %d requested", got, want)
		if logger := GetGlobalLogger(); logger != nil {
			logger.LogShortfall(got, want)
		}
	}
	return records, nil
}

// GenerateCell is the narrow single-combination path: the same batched code
// with exactly one cell.
func (r *RemoteStrategy) GenerateCell(ctx context.Context, text string, cell GenerationCell, subject, topic string) ([]QuestionRecord, error) {
	return r.Generate(ctx, text, []GenerationCell{cell}, subject, topic)
}

// submittedQuestion is one item of the model's structured output.
type submittedQuestion struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	TaxonomyLevel string `json:"taxonomy_level"`
	Difficulty    string `json:"difficulty"`
}

// parseSubmission extracts the submit_questions tool call from a chat
// response. A malformed structure fails the whole batch; there is no
// partial parse.
func parseSubmission(resp openai.ChatCompletionResponse) ([]submittedQuestion, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}
	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_questions" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var args struct {
		Questions []submittedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	return args.Questions, nil
}

// assembleRecords validates each parsed item, recovers malformed enum tags,
// applies the diversity filter and derives question type and snippet. The
// output preserves cell order: records are grouped under the cell whose
// taxonomy/difficulty pair they resolved to, with unmatched pairs appended
// after all requested cells.
func (r *RemoteStrategy) assembleRecords(text string, cells []GenerationCell, items []submittedQuestion, subject, topic string) []QuestionRecord {
	type pair struct {
		taxonomy   TaxonomyLevel
		difficulty DifficultyLevel
	}

	buckets := make(map[pair][]QuestionRecord)
	var extras []pair
	known := make(map[pair]bool, len(cells))
	for _, cell := range cells {
		known[pair{cell.Taxonomy, cell.Difficulty}] = true
	}

	filter := NewDiversityFilter(r.threshold)
	for _, item := range items {
		question := strings.TrimSpace(item.Question)
		answer := strings.TrimSpace(item.Answer)
		if question == "" || answer == "" {
			continue
		}
		if !filter.Accept(question, answer) {
			if logger := GetGlobalLogger(); logger != nil {
				logger.LogRejection(question, "duplicate or near-duplicate")
			}
			continue
		}

		key := pair{
			taxonomy:   RecoverTaxonomyLevel(item.TaxonomyLevel),
			difficulty: RecoverDifficultyLevel(item.Difficulty),
		}
		if !known[key] {
			if _, tracked := buckets[key]; !tracked {
				extras = append(extras, key)
			}
		}
		buckets[key] = append(buckets[key], QuestionRecord{
			Question:       question,
			Answer:         answer,
			TaxonomyLevel:  key.taxonomy,
			Difficulty:     key.difficulty,
			QuestionType:   ClassifyQuestionType(question),
			ContextSnippet: r.synth.Snippet(text, question, r.snippetLen),
			Subject:        subject,
			Topic:          topic,
		})
	}

	var records []QuestionRecord
	for _, cell := range cells {
		records = append(records, buckets[pair{cell.Taxonomy, cell.Difficulty}]...)
	}
	for _, key := range extras {
		records = append(records, buckets[key]...)
	}
	return records
}

// buildPrompt assembles the single batched prompt enumerating every cell.
func (r *RemoteStrategy) buildPrompt(text string, cells []GenerationCell) string {
	var sb strings.Builder

	sb.WriteString("Generate questions based on the following context.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nGenerate questions with the following specifications:\n")

	for _, cell := range cells {
		sb.WriteString(fmt.Sprintf("- %d questions with taxonomy level %q and difficulty %q\n",
			cell.Count, cell.Taxonomy, cell.Difficulty))
	}

	sb.WriteString("\nRequirements for all questions:\n")
	sb.WriteString("- Include both question and detailed answer\n")
	sb.WriteString("- Make questions specific to the context\n")
	sb.WriteString("- IMPORTANT: Each question and answer must be unique and different from others\n")
	sb.WriteString("- Vary the question formats and answer structures\n")
	sb.WriteString("- Tag every question with its exact taxonomy level and difficulty\n")
	sb.WriteString("- Use the submit_questions tool to return your questions\n")

	return sb.String()
}
