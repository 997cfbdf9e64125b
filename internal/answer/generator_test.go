package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sibylsearch/sibyl/internal/errs"
	"github.com/sibylsearch/sibyl/internal/llm"
	"github.com/sibylsearch/sibyl/internal/retrieval"
	"github.com/sibylsearch/sibyl/internal/search"
)

type fakeChat struct {
	completion  string
	completeErr error
	tokens      []string
	streamErr   error
	lastReq     llm.ChatRequest
}

func (f *fakeChat) Name() string           { return "fake" }
func (f *fakeChat) SupportsJSONMode() bool { return true }

func (f *fakeChat) StreamChat(_ context.Context, req llm.ChatRequest, onDelta func(string)) error {
	f.lastReq = req
	for _, tok := range f.tokens {
		onDelta(tok)
	}
	return f.streamErr
}

func (f *fakeChat) Complete(_ context.Context, req llm.ChatRequest) (string, error) {
	f.lastReq = req
	return f.completion, f.completeErr
}

func TestStreamForwardsTokensInOrder(t *testing.T) {
	chat := &fakeChat{tokens: []string{"The ", "best ", "bagel."}}
	gen := NewGenerator(chat)

	var got []string
	err := gen.Stream(context.Background(), "best bagel in NYC", []retrieval.Chunk{
		{Text: "bagel evidence", SourceTitle: "t", SourceURL: "u"},
	}, func(tok string) {
		got = append(got, tok)
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if strings.Join(got, "") != "The best bagel." {
		t.Fatalf("unexpected token sequence: %#v", got)
	}
	if !strings.Contains(chat.lastReq.User, "bagel evidence") {
		t.Fatalf("chunks not serialized into prompt: %q", chat.lastReq.User)
	}
	if !strings.Contains(chat.lastReq.System, "best bagel in NYC") {
		t.Fatalf("query missing from system prompt: %q", chat.lastReq.System)
	}
}

func TestStreamReportsUpstreamInterruption(t *testing.T) {
	chat := &fakeChat{tokens: []string{"a", "b", "c"}, streamErr: errors.New("connection dropped")}
	gen := NewGenerator(chat)

	var count int
	err := gen.Stream(context.Background(), "q", nil, func(string) { count++ })
	if err == nil {
		t.Fatalf("expected stream error to surface")
	}
	if count != 3 {
		t.Fatalf("fragments received before the drop must still be delivered, got %d", count)
	}
}

func TestFollowUpsParsesStructuredShape(t *testing.T) {
	chat := &fakeChat{completion: `{"original": "best bagel in NYC", "followUp": ["Where?", "When?", "Why?"]}`}
	gen := NewGenerator(chat)

	set, err := gen.FollowUps(context.Background(), []search.Source{{Title: "t", URL: "u"}}, "best bagel in NYC")
	if err != nil {
		t.Fatalf("follow-ups: %v", err)
	}
	if set.Original != "best bagel in NYC" || len(set.FollowUps) != 3 {
		t.Fatalf("unexpected follow-up set: %#v", set)
	}
	if !chat.lastReq.JSONMode {
		t.Fatalf("follow-up request must ask for JSON output")
	}
}

func TestFollowUpsUnwrapsCodeFence(t *testing.T) {
	chat := &fakeChat{completion: "```json\n{\"original\": \"q\", \"followUp\": [\"a\", \"b\", \"c\"]}\n```"}
	gen := NewGenerator(chat)

	set, err := gen.FollowUps(context.Background(), nil, "q")
	if err != nil {
		t.Fatalf("follow-ups: %v", err)
	}
	if len(set.FollowUps) != 3 {
		t.Fatalf("unexpected follow-up set: %#v", set)
	}
}

func TestFollowUpsWrongShapeIsMalformedResponse(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"original": "q", "followUp": ["only", "two"]}`,
		`{"original": "q"}`,
	}
	for _, completion := range cases {
		gen := NewGenerator(&fakeChat{completion: completion})
		_, err := gen.FollowUps(context.Background(), nil, "q")
		if err == nil {
			t.Fatalf("expected error for completion %q", completion)
		}
		if !errs.IsMalformedResponse(err) {
			t.Fatalf("expected MalformedResponseError for %q, got %T: %v", completion, err, err)
		}
	}
}
