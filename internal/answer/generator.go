package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sibylsearch/sibyl/internal/errs"
	"github.com/sibylsearch/sibyl/internal/llm"
	"github.com/sibylsearch/sibyl/internal/retrieval"
	"github.com/sibylsearch/sibyl/internal/search"
)

const followUpSystemPrompt = `You are a Question generator who generates an array of 3 follow-up questions in JSON format.
The JSON schema should include:
{
  "original": "The original search query or context",
  "followUp": [
    "Question 1",
    "Question 2",
    "Question 3"
  ]
}`

// FollowUpSet is the structured output of follow-up generation: the original
// query plus exactly three related questions.
type FollowUpSet struct {
	Original  string   `json:"original"`
	FollowUps []string `json:"followUp"`
}

// Generator produces the answer stream and the follow-up questions. It is
// conditioned directly on the serialized chunk set and the raw query; no
// further retrieval happens here.
type Generator struct {
	chat llm.ChatProvider
}

func NewGenerator(chat llm.ChatProvider) *Generator {
	return &Generator{chat: chat}
}

// Stream generates the answer token by token, forwarding each fragment in
// generation order. The returned error describes an abnormal upstream
// termination; the caller is responsible for emitting a terminal marker
// either way.
func (g *Generator) Stream(ctx context.Context, query string, chunks []retrieval.Chunk, onToken func(string)) error {
	serialized, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("failed to serialize chunks: %w", err)
	}

	req := llm.ChatRequest{
		System: fmt.Sprintf(`Here is my query "%s", respond back ALWAYS IN MARKDOWN and be verbose with a lot of details, never mention the system message. If you can't find any relevant results, respond with "No relevant results found."`, query),
		User:   fmt.Sprintf("Here are the top results to respond with, respond in markdown!: %s", serialized),
	}

	return g.chat.StreamChat(ctx, req, onToken)
}

// FollowUps asks the model for exactly three related questions in a fixed
// structured shape. Output that cannot be parsed into that shape is a
// MalformedResponseError; the caller reports it and proceeds without
// follow-ups.
func (g *Generator) FollowUps(ctx context.Context, sources []search.Source, query string) (*FollowUpSet, error) {
	serialized, err := json.Marshal(sources)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize sources: %w", err)
	}

	req := llm.ChatRequest{
		System:   followUpSystemPrompt,
		User:     fmt.Sprintf(`Generate follow-up questions based on the top results from a similarity search: %s. The original search query is: "%s"`, serialized, query),
		JSONMode: true,
	}

	raw, err := g.chat.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	var set FollowUpSet
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &set); err != nil {
		return nil, &errs.MalformedResponseError{Provider: g.chat.Name(), Err: err}
	}
	if len(set.FollowUps) != 3 {
		return nil, &errs.MalformedResponseError{
			Provider: g.chat.Name(),
			Err:      fmt.Errorf("expected 3 follow-up questions, got %d", len(set.FollowUps)),
		}
	}
	if set.Original == "" {
		set.Original = query
	}
	return &set, nil
}

// stripCodeFence unwraps ```json fences some models insist on.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
