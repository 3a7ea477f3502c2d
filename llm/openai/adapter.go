package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/kaptinlin/jsonrepair"
	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"
)

// ToOpenAIMessages converts the system prompt and conversation to chat messages.
// Tool responses become "tool" role messages placed before the rest of their message,
// as the API requires them to follow the assistant's tool calls directly.
func ToOpenAIMessages(system string, msgs []llm.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if system != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range msgs {
		result = append(result, ToOpenAIMessage(msg)...)
	}
	return result
}

// ToOpenAIMessage converts a single llm.Message to one or more chat messages.
func ToOpenAIMessage(msg llm.Message) []openai.ChatCompletionMessage {
	role := openai.ChatMessageRoleUser
	if msg.Role == llm.RoleAssistant {
		role = openai.ChatMessageRoleAssistant
	}

	var (
		texts     []string
		toolCalls []openai.ToolCall
		toolMsgs  []openai.ChatCompletionMessage
		images    []llm.Content
	)

	for _, item := range msg.Content {
		switch item.Type {
		case llm.MessageContentTypeText:
			if item.Text != "" {
				texts = append(texts, item.Text)
			}

		case llm.MessageContentTypeToolRequest:
			request := item.ToolRequest
			if request == nil {
				continue
			}
			if request.Err != nil || request.Call == nil {
				texts = append(texts, errorText(request.Err))
				continue
			}
			toolCalls = append(toolCalls, toOpenAIToolCall(request.ID, request.Call))

		case llm.MessageContentTypeToolResponse:
			response := item.ToolResponse
			if response == nil {
				continue
			}
			toolMsg := openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: response.ID,
			}
			if response.Err != nil {
				toolMsg.Content = errorText(response.Err)
				toolMsgs = append(toolMsgs, toolMsg)
				continue
			}
			visible := llm.AssistantVisible(response.Result)
			toolMsg.Content = strings.Join(lo.FilterMap(visible, func(c llm.Content, _ int) (string, bool) {
				return c.Text, !c.IsImage()
			}), "\n")
			toolMsgs = append(toolMsgs, toolMsg)
			// Tool messages cannot carry images; they follow in a user message.
			images = append(images, lo.Filter(visible, func(c llm.Content, _ int) bool {
				return c.IsImage()
			})...)
		}
	}

	result := toolMsgs
	if len(images) > 0 {
		result = append(result, imageMessage(images))
	}
	if len(texts) > 0 || len(toolCalls) > 0 {
		result = append(result, openai.ChatCompletionMessage{
			Role:      role,
			Content:   strings.Join(texts, "\n"),
			ToolCalls: toolCalls,
		})
	}
	return result
}

func toOpenAIToolCall(id string, call *llm.ToolCall) openai.ToolCall {
	arguments := "{}"
	if len(call.Arguments) > 0 {
		if data, err := json.Marshal(call.Arguments); err == nil {
			arguments = string(data)
		}
	}
	return openai.ToolCall{
		ID:   id,
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      call.Name,
			Arguments: arguments,
		},
	}
}

func imageMessage(images []llm.Content) openai.ChatCompletionMessage {
	parts := lo.Map(images, func(image llm.Content, _ int) openai.ChatMessagePart {
		payload := llm.ConvertImage(image, llm.ImageFormatOpenAI)
		return openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    payload.ImageURL.URL,
				Detail: openai.ImageURLDetailAuto,
			},
		}
	})
	return openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}
}

func errorText(err *llm.ToolError) string {
	if err == nil {
		return "Error: missing tool call"
	}
	return fmt.Sprintf("Error: %s", err)
}

// ToOpenAITools converts tool declarations to function definitions.
// A tool without a schema is declared as taking an empty object.
func ToOpenAITools(tools []llm.Tool) []openai.Tool {
	return lo.Map(tools, func(t llm.Tool, _ int) openai.Tool {
		parameters := t.InputSchema
		if len(parameters) == 0 {
			parameters = map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			}
		}
		return openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  parameters,
			},
		}
	})
}

// FromOpenAIResponse converts the first choice into an assistant message.
func FromOpenAIResponse(resp openai.ChatCompletionResponse) llm.Message {
	message := llm.NewAssistantMessage()
	if len(resp.Choices) == 0 {
		return message
	}

	choice := resp.Choices[0].Message
	if choice.Content != "" {
		message.Content = append(message.Content, llm.NewTextContent(choice.Content))
	}
	for _, toolCall := range choice.ToolCalls {
		message.Content = append(message.Content, FromOpenAIToolCall(toolCall))
	}
	return message
}

// FromOpenAIToolCall converts a model-issued tool call. Malformed argument JSON is
// repaired when possible before it is reported as invalid.
func FromOpenAIToolCall(toolCall openai.ToolCall) llm.MessageContent {
	name := toolCall.Function.Name
	if !llm.IsValidFunctionName(name) {
		return llm.NewToolRequestErrorContent(toolCall.ID, llm.InvalidFunctionNameError(name))
	}

	args, err := parseArguments(toolCall.Function.Arguments)
	if err != nil {
		return llm.NewToolRequestErrorContent(toolCall.ID, llm.NewInvalidParametersError(
			fmt.Sprintf("Could not interpret tool use parameters for id %s: %s", toolCall.ID, err)))
	}
	return llm.NewToolRequestContent(toolCall.ID, llm.NewToolCall(name, args))
}

func parseArguments(raw string) (map[string]interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]interface{}{}, nil
	}

	var args map[string]interface{}
	err := json.Unmarshal([]byte(raw), &args)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return nil, err
		}
		args = nil
		if err := json.Unmarshal([]byte(repaired), &args); err != nil {
			return nil, err
		}
	}
	if args == nil {
		return nil, fmt.Errorf("arguments are not a JSON object")
	}
	return args, nil
}

// FromOpenAIUsage converts reported token counts. A response without usage yields an
// empty Usage.
func FromOpenAIUsage(usage openai.Usage) llm.Usage {
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 && usage.TotalTokens == 0 {
		return llm.Usage{}
	}
	return llm.NewUsage(lo.ToPtr(usage.PromptTokens), lo.ToPtr(usage.CompletionTokens), lo.ToPtr(usage.TotalTokens))
}
