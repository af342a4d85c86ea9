package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstText(t *testing.T) {
	text, ok := FirstText([]Part{
		{Kind: PartReasoning, Text: "thinking"},
		{Kind: PartToolUse, Text: "lookup"},
		{Kind: PartText, Text: ""},
		{Kind: PartText, Text: "describe('x')"},
		{Kind: PartText, Text: "second"},
	})
	assert.True(t, ok)
	assert.Equal(t, "describe('x')", text)

	_, ok = FirstText([]Part{{Kind: PartOther}, {Kind: PartReasoning, Text: "hmm"}})
	assert.False(t, ok)
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := unavailable("openai", "gpt-4", cause)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEmptyResponse)
	assert.Contains(t, err.Error(), "gpt-4")

	var perr *Error
	require.True(t, errors.As(empty("anthropic", "claude-3-5-haiku-20241022"), &perr))
	assert.Equal(t, "anthropic", perr.Provider)
}

func TestOpenAIGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":"test('adds', () => {})"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Temperature: 0.7})
	text, err := p.Generate(context.Background(), "gpt-3.5-turbo", "write tests", 2000)
	require.NoError(t, err)
	assert.Equal(t, "test('adds', () => {})", text)
	assert.Equal(t, "gpt-3.5-turbo", got["model"])
	assert.EqualValues(t, 2000, got["max_tokens"])
}

func TestOpenAIGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4","choices":[]}`)
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	_, err := p.Generate(context.Background(), "gpt-4", "write tests", 10)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	_, err := p.Generate(context.Background(), "gpt-4", "write tests", 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAnthropicGenerateFirstTextBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-20241022",
			"content":[
				{"type":"thinking","thinking":"plan the tests","signature":"sig"},
				{"type":"text","text":"def test_add():\n    assert add(1, 2) == 3"},
				{"type":"text","text":"ignored"}
			],
			"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":12,"output_tokens":34}}`)
	}))
	defer srv.Close()

	p := NewAnthropic(AnthropicConfig{APIKey: "sk-ant", BaseURL: srv.URL})
	text, err := p.Generate(context.Background(), "claude-3-5-haiku-20241022", "write tests", 2000)
	require.NoError(t, err)
	assert.Equal(t, "def test_add():\n    assert add(1, 2) == 3", text)
}

func TestAnthropicGenerateNoTextBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-20241022",
			"content":[{"type":"tool_use","id":"tu_1","name":"lookup","input":{}}],
			"stop_reason":"tool_use","stop_sequence":null,"usage":{"input_tokens":1,"output_tokens":1}}`)
	}))
	defer srv.Close()

	p := NewAnthropic(AnthropicConfig{APIKey: "sk-ant", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "claude-3-5-haiku-20241022", "write tests", 10)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropicGenerateNoRetryOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`)
	}))
	defer srv.Close()

	p := NewAnthropic(AnthropicConfig{APIKey: "sk-ant", BaseURL: srv.URL, Timeout: 5 * time.Second})
	_, err := p.Generate(context.Background(), "claude-3-7-sonnet-20250219", "write tests", 10)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, calls)
}

type fakeProvider struct {
	text  string
	err   error
	calls int
	model string
}

func (f *fakeProvider) Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	f.calls++
	f.model = model
	return f.text, f.err
}

func TestRegistryRoutesByPrefix(t *testing.T) {
	gpt := &fakeProvider{text: "from gpt"}
	claude := &fakeProvider{text: "from claude"}
	r := NewRegistry()
	r.Register("gpt", "openai", gpt)
	r.Register("claude", "anthropic", claude)

	text, err := r.Generate(context.Background(), "claude-3-7-sonnet-20250219", "p", 10)
	require.NoError(t, err)
	assert.Equal(t, "from claude", text)
	assert.Equal(t, 0, gpt.calls)

	text, err = r.Generate(context.Background(), "gpt-3.5-turbo", "p", 10)
	require.NoError(t, err)
	assert.Equal(t, "from gpt", text)

	assert.True(t, r.Supports("gpt-4"))
	assert.False(t, r.Supports("llama-3"))
	_, err = r.Generate(context.Background(), "llama-3", "p", 10)
	assert.ErrorIs(t, err, ErrNoBinding)
}

func TestRegistryLongestPrefixWins(t *testing.T) {
	generic := &fakeProvider{text: "generic"}
	special := &fakeProvider{text: "special"}
	r := NewRegistry()
	r.Register("gpt", "openai", generic)
	r.Register("gpt-4", "azure", special)

	text, err := r.Generate(context.Background(), "gpt-4", "p", 10)
	require.NoError(t, err)
	assert.Equal(t, "special", text)
}
