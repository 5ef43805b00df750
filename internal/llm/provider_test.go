package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/abhisek/docquiz/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"questions":[]}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"questions":[]}` {
		t.Fatalf("unexpected content %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"questions":[{"question":"What is ATP?"}]}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: questionSet()})
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	req := Request{
		System:    "sys",
		Messages:  []Message{{Role: RoleUser, Content: "hello"}},
		MaxTokens: 4096,
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" || mock.Calls[0].MaxTokens != 4096 {
		t.Fatalf("unexpected recorded request: %+v", mock.Calls[0])
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestContextLabels(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	if id := RunIDFrom(ctx); id != "" {
		t.Fatalf("expected empty run id, got %q", id)
	}

	ctx = WithRunID(WithPurpose(ctx, "question-gen:mcq"), "run-1")
	if p := PurposeFrom(ctx); p != "question-gen:mcq" {
		t.Fatalf("expected 'question-gen:mcq', got %q", p)
	}
	if id := RunIDFrom(ctx); id != "run-1" {
		t.Fatalf("expected run-1, got %q", id)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantErr     bool
		wantMissing bool
	}{
		{"gemini without key", Config{Provider: ProviderGemini}, true, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk"}}, false, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true, true},
		{"mock is test-only", Config{Provider: "mock"}, true, false},
		{"unknown provider", Config{Provider: "unknown"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := errors.Is(err, ErrMissingCredential); got != tt.wantMissing {
				t.Fatalf("errors.Is(ErrMissingCredential) = %v, want %v", got, tt.wantMissing)
			}
		})
	}
}

func TestNewProvider_MissingCredentialFailsFast(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NewProvider(context.Background(), cfg, nil, zap.NewNop())
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestNewProvider_MockNotSelectable(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), `unknown LLM provider: "mock"`) {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

type recordingRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("boom")}},
	)
	repo := &recordingRepo{err: errors.New("disk full")}
	p := WithLogging(mock, "mock", repo, zap.NewNop())

	ctx := WithRunID(WithPurpose(context.Background(), "question-gen:short"), "run-42")
	req := Request{System: "persona", Messages: []Message{{Role: RoleUser, Content: "prompt"}}, MaxTokens: 4096}

	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("request log failures must not fail generation: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected provider error to pass through")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	first := repo.events[0]
	if !first.Success || first.InputTokens != 12 || first.Purpose != "question-gen:short" || first.RunID != "run-42" {
		t.Errorf("unexpected first event: %+v", first)
	}
	if first.ResponseBody != `{"ok":true}` {
		t.Errorf("response body = %q", first.ResponseBody)
	}
	second := repo.events[1]
	if second.Success || second.ErrorMessage == "" {
		t.Errorf("expected failed event with message, got %+v", second)
	}
}

func TestSerializeRequest(t *testing.T) {
	got := serializeRequest(Request{
		System:    "persona",
		Messages:  []Message{{Role: RoleUser, Content: "prompt"}},
		Schema:    questionSet(),
		MaxTokens: 8192,
	})
	want := "[system]\npersona\n\n[user]\nprompt\n\n"
	if !strings.HasPrefix(got, want) {
		t.Fatalf("unexpected prefix:\n%s", got)
	}
	for _, part := range []string{"[schema: test-question-set-mcq]", "[max_tokens: 8192]"} {
		if !strings.Contains(got, part) {
			t.Errorf("missing %q in:\n%s", part, got)
		}
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-2.5-flash")
	if c == nil {
		t.Fatal("expected pricing for gemini-2.5-flash")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-2.8) > 1e-9 {
		t.Errorf("cost = %v, want 2.8", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Error("expected nil for unknown model")
	}
}
