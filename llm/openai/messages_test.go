package openai

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conversation builds a fresh copy of a turn sequence covering every item kind.
func conversation() []llm.Message {
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	user := llm.NewTextMessage(llm.RoleUser, "weather in Oslo?")
	user.Created = created

	assistant := llm.NewAssistantMessage().
		WithText("checking").
		WithToolRequest("weather", llm.NewToolCall("weather", map[string]interface{}{
			"city": "Oslo",
			"days": 2.0,
			"opts": map[string]interface{}{"units": "metric"},
		}))
	assistant.Created = created

	results := llm.NewUserMessage().WithToolResponse("weather", []llm.Content{
		llm.TextContent("sunny").WithAudience(llm.RoleAssistant),
		llm.TextContent("raw payload").WithAudience(llm.RoleUser),
		llm.ImageContent("aGVsbG8=", "image/png"),
	})
	results.Created = created

	return []llm.Message{user, assistant, results}
}

// forecastTool builds a fresh tool declaration.
func forecastTool() llm.Tool {
	return llm.Tool{
		Name:        "weather",
		Description: "Forecast",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"city": map[string]interface{}{"type": "string"},
				"days": map[string]interface{}{"type": "integer"},
			},
			"required": []interface{}{"city"},
		},
	}
}

func TestComplete_LeavesCallerMessagesUnchanged(t *testing.T) {
	provider := newTestProvider(t, respond(http.StatusOK, `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-test","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	messages := conversation()
	tools := []llm.Tool{forecastTool()}

	_, _, err := provider.Complete(context.Background(), "be brief", messages, tools)
	require.NoError(t, err)

	assert.Equal(t, conversation(), messages)
	assert.Equal(t, []llm.Tool{forecastTool()}, tools)
}
