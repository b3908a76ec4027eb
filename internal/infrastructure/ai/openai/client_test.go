package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, key string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: key, BaseURL: srv.URL + "/"}, zap.NewNop())
}

func TestGenerateImage(t *testing.T) {
	var got imageRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"https://img.example/1.png"}]}`))
	}, "sk-test")

	url, err := client.GenerateImage(context.Background(), "A plate of pasta")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/1.png", url)
	assert.Equal(t, imageRequest{Prompt: "A plate of pasta", N: 1, Size: "512x512", ResponseFormat: "url"}, got)
}

func TestGenerateImageErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error message", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate_limit"}}`, wantErr: "API error 429: slow down"},
		{name: "plain error body", status: http.StatusBadGateway, body: "upstream down", wantErr: "API error 502: upstream down"},
		{name: "empty data", status: http.StatusOK, body: `{"data":[]}`, wantErr: "no image url returned"},
		{name: "missing url", status: http.StatusOK, body: `{"data":[{"revised_prompt":"x"}]}`, wantErr: "no image url returned"},
		{name: "invalid json", status: http.StatusOK, body: `{`, wantErr: "failed to unmarshal response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "sk-test")

			_, err := client.GenerateImage(context.Background(), "prompt")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerateImageNotConfigured(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, "")

	assert.False(t, client.Configured())
	_, err := client.GenerateImage(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called)
}

func TestGenerateImageHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, "sk-test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateImage(ctx, "prompt")
	assert.ErrorIs(t, err, context.Canceled)
}
