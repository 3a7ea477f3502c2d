package ollama

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/ollama/ollama/api"
	"github.com/samber/lo"
)

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
	roleTool      = "tool"
)

// ToOllamaMessages converts the system prompt and conversation to Ollama chat messages.
func ToOllamaMessages(system string, msgs []llm.Message) []api.Message {
	result := make([]api.Message, 0, len(msgs)+1)
	if system != "" {
		result = append(result, api.Message{Role: roleSystem, Content: system})
	}
	for _, msg := range msgs {
		result = append(result, ToOllamaMessage(msg)...)
	}
	return result
}

// ToOllamaMessage converts a single llm.Message. Each tool response becomes its own
// "tool" message ahead of the remaining text.
func ToOllamaMessage(msg llm.Message) []api.Message {
	role := roleUser
	if msg.Role == llm.RoleAssistant {
		role = roleAssistant
	}

	var (
		texts     []string
		toolCalls []api.ToolCall
		toolMsgs  []api.Message
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
			args := make(api.ToolCallFunctionArguments)
			for k, v := range request.Call.Arguments {
				args[k] = v
			}
			toolCalls = append(toolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      request.Call.Name,
					Arguments: args,
				},
			})

		case llm.MessageContentTypeToolResponse:
			response := item.ToolResponse
			if response == nil {
				continue
			}
			if response.Err != nil {
				toolMsgs = append(toolMsgs, api.Message{Role: roleTool, Content: errorText(response.Err)})
				continue
			}
			toolMsgs = append(toolMsgs, toolResultMessage(llm.AssistantVisible(response.Result)))
		}
	}

	result := toolMsgs
	if len(texts) > 0 || len(toolCalls) > 0 {
		result = append(result, api.Message{
			Role:      role,
			Content:   strings.Join(texts, "\n"),
			ToolCalls: toolCalls,
		})
	}
	return result
}

// toolResultMessage joins text items and attaches decodable images.
func toolResultMessage(contents []llm.Content) api.Message {
	msg := api.Message{Role: roleTool}
	var texts []string
	for _, c := range contents {
		if !c.IsImage() {
			texts = append(texts, c.Text)
			continue
		}
		data, err := base64.StdEncoding.DecodeString(c.Data)
		if err != nil {
			continue
		}
		msg.Images = append(msg.Images, api.ImageData(data))
	}
	msg.Content = strings.Join(texts, "\n")
	return msg
}

func errorText(err *llm.ToolError) string {
	if err == nil {
		return "Error: missing tool call"
	}
	return fmt.Sprintf("Error: %s", err)
}

// ToOllamaTools converts tool declarations to Ollama function definitions.
func ToOllamaTools(tools []llm.Tool) []api.Tool {
	return lo.Map(tools, func(t llm.Tool, _ int) api.Tool {
		return ToOllamaTool(t)
	})
}

// ToOllamaTool converts a single llm.Tool. Only property types and descriptions are
// carried; Ollama's parameter model has no room for the rest of JSON schema.
func ToOllamaTool(tool llm.Tool) api.Tool {
	properties := make(map[string]api.ToolProperty)
	if props, ok := tool.InputSchema["properties"].(map[string]interface{}); ok {
		for name, v := range props {
			prop := api.ToolProperty{Type: []string{getPropertyType(v)}}
			if propMap, ok := v.(map[string]interface{}); ok {
				if description, ok := propMap["description"].(string); ok {
					prop.Description = description
				}
			}
			properties[name] = prop
		}
	}

	return api.Tool{
		Type: "function",
		Function: api.ToolFunction{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: api.ToolFunctionParameters{
				Type:       "object",
				Properties: properties,
				Required:   requiredFields(tool.InputSchema),
			},
		},
	}
}

// FromOllamaMessage converts a reply into an assistant message. Tool call arguments
// are coerced to the types declared by the matching tool; Ollama issues no call id,
// so one is derived from the function name and position.
func FromOllamaMessage(msg api.Message, tools []llm.Tool) llm.Message {
	reply := llm.NewAssistantMessage()
	if msg.Content != "" {
		reply.Content = append(reply.Content, llm.NewTextContent(msg.Content))
	}

	toolsByName := lo.KeyBy(tools, func(t llm.Tool) string { return t.Name })
	for i, toolCall := range msg.ToolCalls {
		name := toolCall.Function.Name
		id := fmt.Sprintf("call_%s_%d", name, i)
		if !llm.IsValidFunctionName(name) {
			reply.Content = append(reply.Content, llm.NewToolRequestErrorContent(id, llm.InvalidFunctionNameError(name)))
			continue
		}

		args := make(map[string]interface{}, len(toolCall.Function.Arguments))
		for k, v := range toolCall.Function.Arguments {
			args[k] = v
		}
		if tool, ok := toolsByName[name]; ok {
			converted, err := coerceArguments(name, args, tool.InputSchema)
			if err != nil {
				reply.Content = append(reply.Content, llm.NewToolRequestErrorContent(id,
					llm.NewInvalidParametersError(err.Error())))
				continue
			}
			args = converted
		}
		reply.Content = append(reply.Content, llm.NewToolRequestContent(id, llm.NewToolCall(name, args)))
	}
	return reply
}

// FromOllamaMetrics converts prompt and eval counts. Zero counts are treated as unreported.
func FromOllamaMetrics(promptEvalCount, evalCount int) llm.Usage {
	var in, out *int
	if promptEvalCount > 0 {
		in = lo.ToPtr(promptEvalCount)
	}
	if evalCount > 0 {
		out = lo.ToPtr(evalCount)
	}
	return llm.NewUsage(in, out, nil)
}
