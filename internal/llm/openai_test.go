package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/prompt"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
}

func newFakeOpenAI(t *testing.T, status int, body string, seen *chatRequest, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"logprobs": null,
		"message": {"role": "assistant", "content": "  The document is about Go.  ", "refusal": null}
	}]
}`

func newTestClient(t *testing.T, srv *httptest.Server, key string) *OpenAIClient {
	t.Helper()
	c, err := NewOpenAIClient(key, "gpt-4", option.WithBaseURL(srv.URL+"/v1/"))
	require.NoError(t, err)
	return c
}

func TestOpenAIClientComplete(t *testing.T) {
	var seen chatRequest
	srv := newFakeOpenAI(t, http.StatusOK, completionBody, &seen, nil)
	defer srv.Close()

	c := newTestClient(t, srv, "sk-test")
	out, err := c.Complete(context.Background(), prompt.Request{
		Task:        prompt.TaskSummarize,
		Instruction: "Summarize this",
		Temperature: 0.5,
	})

	require.NoError(t, err)
	assert.Equal(t, "  The document is about Go.  ", out)
	assert.Equal(t, "gpt-4", seen.Model)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "user", seen.Messages[0].Role)
	assert.Equal(t, "Summarize this", seen.Messages[0].Content)
	assert.InDelta(t, 0.5, seen.Temperature, 1e-9)
}

func TestOpenAIClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "bad credential",
			key:     "sk-wrong",
			status:  http.StatusOK,
			body:    completionBody,
			wantErr: ErrAuthentication,
		},
		{
			name:    "rate limited",
			key:     "sk-test",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`,
			wantErr: ErrRateLimit,
		},
		{
			name:    "forbidden",
			key:     "sk-test",
			status:  http.StatusForbidden,
			body:    `{"error":{"message":"Project does not have access","type":"invalid_request_error"}}`,
			wantErr: ErrAuthentication,
		},
		{
			name:    "server error",
			key:     "sk-test",
			status:  http.StatusInternalServerError,
			body:    `{"error":{"message":"boom","type":"server_error"}}`,
			wantErr: ErrTransport,
		},
		{
			name:    "no choices",
			key:     "sk-test",
			status:  http.StatusOK,
			body:    `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4","choices":[]}`,
			wantErr: ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := newFakeOpenAI(t, tt.status, tt.body, nil, &calls)
			defer srv.Close()

			c := newTestClient(t, srv, tt.key)
			_, err := c.Complete(context.Background(), prompt.Summarize("doc"))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "client must not retry")
		})
	}
}

func TestOpenAIClientTransportFailure(t *testing.T) {
	srv := newFakeOpenAI(t, http.StatusOK, completionBody, nil, nil)
	c := newTestClient(t, srv, "sk-test")
	srv.Close()

	_, err := c.Complete(context.Background(), prompt.Summarize("doc"))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "gpt-4")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestOpenAIFactory(t *testing.T) {
	factory := NewOpenAIFactory("gpt-4o-mini")

	c, err := factory("sk-test")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", string(c.(*OpenAIClient).model))

	_, err = factory("")
	assert.ErrorIs(t, err, ErrAuthentication)
}
