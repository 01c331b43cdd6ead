package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMessages struct {
	msg   *anthropic.Message
	err   error
	panic bool
	got   anthropic.MessageNewParams
	calls int
}

func (f *fakeMessages) New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.calls++
	f.got = body
	if f.panic {
		panic("boom")
	}
	return f.msg, f.err
}

func newWithFake(f *fakeMessages) *Client {
	return &Client{messages: f, model: defaultModel, maxTokens: defaultMaxTokens, logger: quietLogger()}
}

func TestNew_DisabledWithoutKey(t *testing.T) {
	for _, key := range []string{"", PlaceholderAPIKey} {
		c := New(Config{APIKey: key}, quietLogger())
		assert.False(t, c.Enabled())

		res := c.Summarize(context.Background(), "t", "c")
		assert.False(t, res.Ok())
	}
}

func TestSummarize_ConcatenatesTextBlocks(t *testing.T) {
	f := &fakeMessages{msg: &anthropic.Message{Content: []anthropic.ContentBlockUnion{
		{Type: "text", Text: "First. "},
		{Type: "thinking"},
		{Type: "text", Text: "Second."},
	}}}
	c := newWithFake(f)

	res := c.Summarize(context.Background(), "Groceries", "milk, eggs")
	text, ok := res.Value()
	require.True(t, ok)
	assert.Equal(t, "First. Second.", text)

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, int64(defaultMaxTokens), f.got.MaxTokens)
	assert.Equal(t, anthropic.Model(defaultModel), f.got.Model)
	require.Len(t, f.got.Messages, 1)
}

func TestSummarize_FailuresAreAbsent(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeMessages
	}{
		{"transport error", &fakeMessages{err: errors.New("connection refused")}},
		{"nil message", &fakeMessages{}},
		{"no text blocks", &fakeMessages{msg: &anthropic.Message{}}},
		{"empty text", &fakeMessages{msg: &anthropic.Message{Content: []anthropic.ContentBlockUnion{{Type: "text"}}}}},
		{"panic", &fakeMessages{panic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newWithFake(tt.fake).Summarize(context.Background(), "t", "c")
			assert.False(t, res.Ok())
			assert.Equal(t, 1, tt.fake.calls)
		})
	}
}

func TestPrompt(t *testing.T) {
	assert.Equal(t,
		"Please provide a brief summary (2-3 sentences) of the following note:\n\nTitle: A\n\nContent: B",
		Prompt("A", "B"))
}

func TestSummarize_AgainstHTTPServer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 200, body["max_tokens"])
		assert.Equal(t, "claude-3-5-haiku-latest", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "A short summary."}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 12, "output_tokens": 5}
		}`)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"}, quietLogger())
	require.True(t, c.Enabled())

	text, ok := c.Summarize(context.Background(), "A", "B").Value()
	assert.True(t, ok)
	assert.Equal(t, "A short summary.", text)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSummarize_ServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"overloaded"}}`)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"}, quietLogger())

	res := c.Summarize(context.Background(), "A", "B")
	assert.False(t, res.Ok())
	assert.EqualValues(t, 1, calls.Load())
}
