package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GoogleProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := New(Config{Host: server.URL, Model: "gemini-test", APIKey: "secret"}, zerolog.Nop())
	require.NoError(t, err)
	return provider
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{}, zerolog.Nop())
	require.Error(t, err)

	provider, err := New(Config{APIKey: "k"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, provider.config.Host)
	assert.Equal(t, DefaultModel, provider.config.Model)
	assert.Equal(t, DefaultTimeout, provider.config.Timeout)
}

func TestComplete_SendsRequest(t *testing.T) {
	var (
		gotPath  string
		gotKey   string
		gotBody  map[string]interface{}
		gotCType string
	)
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotCType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		respond(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)(w, r)
	})

	msg, _, err := provider.Complete(context.Background(), "be brief",
		[]llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")}, nil)
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "application/json", gotCType)
	assert.Equal(t, map[string]interface{}{
		"parts": []interface{}{map[string]interface{}{"text": "be brief"}},
	}, gotBody["system_instruction"])
	assert.NotContains(t, gotBody, "tools")
	assert.Equal(t, "ok", msg.Text())
}

func TestComplete_ToolCallAndUsage(t *testing.T) {
	provider := newTestProvider(t, respond(http.StatusOK, `{
		"candidates":[{"content":{"role":"model","parts":[
			{"text":"checking"},
			{"functionCall":{"name":"weather","args":{"city":"Oslo"}}}
		]}}],
		"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}
	}`))

	msg, usage, err := provider.Complete(context.Background(), "",
		[]llm.Message{llm.NewTextMessage(llm.RoleUser, "weather?")},
		[]llm.Tool{{Name: "weather", Description: "Forecast"}})
	require.NoError(t, err)

	require.Len(t, msg.Content, 2)
	assert.Equal(t, "checking", msg.Content[0].Text)
	request := msg.Content[1].ToolRequest
	require.NotNil(t, request)
	assert.Equal(t, "weather", request.ID)
	assert.Equal(t, "Oslo", request.Call.Arguments["city"])

	require.NotNil(t, usage.TotalTokens)
	assert.Equal(t, 15, *usage.TotalTokens)
}

func TestComplete_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   llm.ErrorKind
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"API key not valid"}}`,
			kind:   llm.ErrorKindAuthentication,
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{}`,
			kind:   llm.ErrorKindAuthentication,
		},
		{
			name:   "context length",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"The input token count (2000000) exceeds the maximum number of tokens allowed (1048576)."}}`,
			kind:   llm.ErrorKindContextLengthExceeded,
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"Invalid value at 'contents'"}}`,
			kind:   llm.ErrorKindRequestFailed,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{}`,
			kind:   llm.ErrorKindRequestFailed,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "Server error: 429 Too Many Requests")
			},
		},
		{
			name:   "server error",
			status: http.StatusServiceUnavailable,
			body:   `{}`,
			kind:   llm.ErrorKindRequestFailed,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "Server error: 503")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, respond(tt.status, tt.body))

			_, _, err := provider.Complete(context.Background(), "",
				[]llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")}, nil)
			require.Error(t, err)

			providerErr, ok := llm.AsProviderError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, providerErr.Kind)
			assert.Equal(t, tt.status, providerErr.StatusCode)
			if tt.check != nil {
				tt.check(t, err)
			}
			assert.True(t, provider.TotalUsage().IsEmpty())
		})
	}
}

func TestComplete_InvalidBody(t *testing.T) {
	provider := newTestProvider(t, respond(http.StatusOK, `not json`))

	_, _, err := provider.Complete(context.Background(), "", nil, nil)

	providerErr, ok := llm.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, llm.ErrorKindRequestFailed, providerErr.Kind)
}

func TestComplete_MalformedOptionalFieldsDoNotFail(t *testing.T) {
	provider := newTestProvider(t, respond(http.StatusOK, `{
		"candidates":[{"content":{"parts":[{"text":7},{"text":"ok"}]}}],
		"usageMetadata":{"promptTokenCount":"10","candidatesTokenCount":5}
	}`))

	msg, usage, err := provider.Complete(context.Background(), "", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "ok", msg.Text())
	assert.Nil(t, usage.InputTokens)
	assert.Nil(t, usage.TotalTokens)
	require.NotNil(t, usage.OutputTokens)
	assert.Equal(t, 5, *usage.OutputTokens)
}

func TestComplete_CanceledContext(t *testing.T) {
	provider := newTestProvider(t, respond(http.StatusOK, `{}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := provider.Complete(ctx, "", nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTotalUsage_Accumulates(t *testing.T) {
	provider := newTestProvider(t, respond(http.StatusOK,
		`{"candidates":[],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5}}`))

	const calls = 8
	var g errgroup.Group
	for i := 0; i < calls; i++ {
		g.Go(func() error {
			_, _, err := provider.Complete(context.Background(), "", nil, nil)
			return err
		})
	}
	require.NoError(t, g.Wait())

	total := provider.TotalUsage()
	require.NotNil(t, total.InputTokens)
	assert.Equal(t, 10*calls, *total.InputTokens)
	assert.Equal(t, 5*calls, *total.OutputTokens)
	assert.Equal(t, 15*calls, *total.TotalTokens)
}

func TestEndpoint_EscapesKey(t *testing.T) {
	provider, err := New(Config{Host: "https://example.test/", Model: "m", APIKey: "a&b"}, zerolog.Nop())
	require.NoError(t, err)

	endpoint := provider.endpoint()

	assert.True(t, strings.HasPrefix(endpoint, "https://example.test/v1beta/models/m:generateContent?"))
	assert.Contains(t, endpoint, "key=a%26b")
}
