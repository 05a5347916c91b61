package questiongenerator

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatClient returns a canned chat completion response.
type fakeChatClient struct {
	resp    openai.ChatCompletionResponse
	err     error
	lastReq openai.ChatCompletionRequest
	calls   int
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	return f.resp, f.err
}

func toolResponse(arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{
						{
							Function: openai.FunctionCall{
								Name:      "submit_questions",
								Arguments: arguments,
							},
						},
					},
				},
			},
		},
	}
}

func newTestRemoteStrategy(client chatCompleter) *RemoteStrategy {
	return NewRemoteStrategyWithClient(client, NewExtractor(nil))
}

func TestRemoteStrategyParsesSubmission(t *testing.T) {
	client := &fakeChatClient{
		resp: toolResponse(`{"questions": [
			{"question": "What is AI?", "answer": "AI is machine intelligence.", "taxonomy_level": "remember", "difficulty": "easy"},
			{"question": "Design a neural network.", "answer": "Use layered perceptrons with backpropagation.", "taxonomy_level": "create", "difficulty": "hard"}
		]}`),
	}
	strategy := newTestRemoteStrategy(client)

	cells := []GenerationCell{
		{Taxonomy: Remember, Difficulty: Easy, Count: 1},
		{Taxonomy: Create, Difficulty: Hard, Count: 1},
	}
	records, err := strategy.Generate(context.Background(), aiContext, cells, "CS", "AI")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, client.calls, "one model invocation per call")

	assert.Equal(t, "What is AI?", records[0].Question)
	assert.Equal(t, Remember, records[0].TaxonomyLevel)
	assert.Equal(t, Easy, records[0].Difficulty)
	assert.Equal(t, "Factual", records[0].QuestionType)
	assert.Equal(t, "CS", records[0].Subject)
	assert.Equal(t, "AI", records[0].Topic)
	assert.NotEmpty(t, records[0].ContextSnippet)

	assert.Equal(t, Create, records[1].TaxonomyLevel)
	assert.Equal(t, "Creative", records[1].QuestionType)
}

func TestRemoteStrategyEmptyOnTransportError(t *testing.T) {
	client := &fakeChatClient{err: errors.New("connection refused")}
	strategy := newTestRemoteStrategy(client)

	cells := []GenerationCell{{Taxonomy: Remember, Difficulty: Easy, Count: 2}}
	records, err := strategy.Generate(context.Background(), aiContext, cells, "CS", "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRemoteStrategyEmptyOnMalformedResponse(t *testing.T) {
	cases := map[string]openai.ChatCompletionResponse{
		"no choices":   {},
		"no tool call": {Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "plain text"}}}},
		"bad json":     toolResponse("this is not json {{"),
		"wrong tool": {Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{
			ToolCalls: []openai.ToolCall{{Function: openai.FunctionCall{Name: "other_tool", Arguments: "{}"}}},
		}}}},
	}

	for name, resp := range cases {
		strategy := newTestRemoteStrategy(&fakeChatClient{resp: resp})
		cells := []GenerationCell{{Taxonomy: Remember, Difficulty: Easy, Count: 1}}
		records, err := strategy.Generate(context.Background(), aiContext, cells, "CS", "")
		require.NoError(t, err, name)
		assert.Empty(t, records, name)
	}
}

func TestRemoteStrategyRecoversMalformedEnums(t *testing.T) {
	client := &fakeChatClient{
		resp: toolResponse(`{"questions": [
			{"question": "Q1?", "answer": "alpha beta gamma", "taxonomy_level": "Remembering facts", "difficulty": "EASY level"},
			{"question": "Q2?", "answer": "delta epsilon zeta", "taxonomy_level": "nonsense", "difficulty": "impossible"}
		]}`),
	}
	strategy := newTestRemoteStrategy(client)

	cells := []GenerationCell{{Taxonomy: Remember, Difficulty: Easy, Count: 2}}
	records, err := strategy.Generate(context.Background(), aiContext, cells, "CS", "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Substring recovery maps the first item; the second defaults.
	assert.Equal(t, Remember, records[0].TaxonomyLevel)
	assert.Equal(t, Easy, records[0].Difficulty)
	assert.Equal(t, Understand, records[1].TaxonomyLevel)
	assert.Equal(t, Medium, records[1].Difficulty)
}

func TestRemoteStrategyDropsEmptyAndDuplicateItems(t *testing.T) {
	client := &fakeChatClient{
		resp: toolResponse(`{"questions": [
			{"question": "What is AI?", "answer": "alpha beta gamma", "taxonomy_level": "remember", "difficulty": "easy"},
			{"question": "  ", "answer": "whatever text here", "taxonomy_level": "remember", "difficulty": "easy"},
			{"question": "No answer?", "answer": "", "taxonomy_level": "remember", "difficulty": "easy"},
			{"question": "What is AI?", "answer": "delta epsilon zeta", "taxonomy_level": "remember", "difficulty": "easy"},
			{"question": "Rephrased?", "answer": "alpha beta gamma", "taxonomy_level": "remember", "difficulty": "easy"}
		]}`),
	}
	strategy := newTestRemoteStrategy(client)

	cells := []GenerationCell{{Taxonomy: Remember, Difficulty: Easy, Count: 5}}
	records, err := strategy.Generate(context.Background(), aiContext, cells, "CS", "")
	require.NoError(t, err)

	// Only the first item survives: blanks, the duplicate question and the
	// identical answer are all dropped without replacement.
	require.Len(t, records, 1)
	assert.Equal(t, "What is AI?", records[0].Question)
}

func TestRemoteStrategyPreservesCellOrder(t *testing.T) {
	// The model returns items in a shuffled order; the output regroups
	// them taxonomy-major, difficulty-minor as distributed.
	client := &fakeChatClient{
		resp: toolResponse(`{"questions": [
			{"question": "U1?", "answer": "one two three", "taxonomy_level": "understand", "difficulty": "medium"},
			{"question": "R1?", "answer": "four five six", "taxonomy_level": "remember", "difficulty": "easy"},
			{"question": "R2?", "answer": "seven eight nine", "taxonomy_level": "remember", "difficulty": "easy"}
		]}`),
	}
	strategy := newTestRemoteStrategy(client)

	cells := []GenerationCell{
		{Taxonomy: Remember, Difficulty: Easy, Count: 2},
		{Taxonomy: Understand, Difficulty: Medium, Count: 1},
	}
	records, err := strategy.Generate(context.Background(), aiContext, cells, "CS", "")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "R1?", records[0].Question)
	assert.Equal(t, "R2?", records[1].Question)
	assert.Equal(t, "U1?", records[2].Question)
}

func TestRemoteStrategyPromptEnumeratesCells(t *testing.T) {
	client := &fakeChatClient{resp: toolResponse(`{"questions": []}`)}
	strategy := newTestRemoteStrategy(client)

	cells := []GenerationCell{
		{Taxonomy: Remember, Difficulty: Easy, Count: 2},
		{Taxonomy: Analyze, Difficulty: Hard, Count: 0}, // skipped
		{Taxonomy: Create, Difficulty: Medium, Count: 1},
	}
	_, err := strategy.Generate(context.Background(), aiContext, cells, "CS", "")
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)

	prompt := client.lastReq.Messages[1].Content
	assert.Contains(t, prompt, aiContext)
	assert.Contains(t, prompt, `2 questions with taxonomy level "remember" and difficulty "easy"`)
	assert.Contains(t, prompt, `1 questions with taxonomy level "create" and difficulty "medium"`)
	assert.NotContains(t, prompt, "analyze")
}

func TestRemoteStrategySkipsCallWhenNothingRequested(t *testing.T) {
	client := &fakeChatClient{}
	strategy := newTestRemoteStrategy(client)

	records, err := strategy.Generate(context.Background(), aiContext, []GenerationCell{
		{Taxonomy: Remember, Difficulty: Easy, Count: 0},
	}, "CS", "")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, client.calls)
}

func TestRemoteStrategyGenerateCell(t *testing.T) {
	client := &fakeChatClient{
		resp: toolResponse(`{"questions": [
			{"question": "What is AI?", "answer": "AI is machine intelligence.", "taxonomy_level": "remember", "difficulty": "easy"}
		]}`),
	}
	strategy := newTestRemoteStrategy(client)

	records, err := strategy.GenerateCell(context.Background(), aiContext,
		GenerationCell{Taxonomy: Remember, Difficulty: Easy, Count: 1}, "CS", "")
	require.NoError(t, err)
	require.Len(t, records, 1)
}
