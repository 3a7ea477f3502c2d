package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/samber/lo"
)

// ToMessageParams converts a slice of llm.Messages to Anthropic MessageParams.
// Messages left without any block are dropped, as the API rejects empty content.
func ToMessageParams(msgs []llm.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		if param, ok := ToMessageParam(msg); ok {
			result = append(result, param)
		}
	}
	return result
}

// ToMessageParam converts an llm.Message to an Anthropic MessageParam.
// It reports false when the message has nothing to send.
func ToMessageParam(msg llm.Message) (anthropic.MessageParam, bool) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
	for _, item := range msg.Content {
		blocks = append(blocks, toContentBlocks(item)...)
	}
	if len(blocks) == 0 {
		return anthropic.MessageParam{}, false
	}

	if msg.Role == llm.RoleAssistant {
		return anthropic.NewAssistantMessage(blocks...), true
	}
	return anthropic.NewUserMessage(blocks...), true
}

func toContentBlocks(item llm.MessageContent) []anthropic.ContentBlockParamUnion {
	switch item.Type {
	case llm.MessageContentTypeText:
		if item.Text == "" {
			return nil
		}
		return []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(item.Text)}

	case llm.MessageContentTypeToolRequest:
		request := item.ToolRequest
		if request == nil {
			return nil
		}
		if request.Err != nil || request.Call == nil {
			return []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(errorText(request.Err))}
		}
		input := request.Call.Arguments
		if input == nil {
			input = map[string]interface{}{}
		}
		return []anthropic.ContentBlockParamUnion{anthropic.NewToolUseBlock(request.ID, input, request.Call.Name)}

	case llm.MessageContentTypeToolResponse:
		response := item.ToolResponse
		if response == nil {
			return nil
		}
		if response.Err != nil {
			return []anthropic.ContentBlockParamUnion{
				anthropic.NewToolResultBlock(response.ID, errorText(response.Err), true),
			}
		}
		visible := llm.AssistantVisible(response.Result)
		text := strings.Join(lo.FilterMap(visible, func(c llm.Content, _ int) (string, bool) {
			return c.Text, !c.IsImage()
		}), "\n")
		blocks := []anthropic.ContentBlockParamUnion{anthropic.NewToolResultBlock(response.ID, text, false)}
		// Images travel as base64 blocks beside the result they belong to.
		for _, image := range lo.Filter(visible, func(c llm.Content, _ int) bool { return c.IsImage() }) {
			payload := llm.ConvertImage(image, llm.ImageFormatAnthropic)
			blocks = append(blocks, anthropic.NewImageBlockBase64(payload.Source.MediaType, payload.Source.Data))
		}
		return blocks

	default:
		return nil
	}
}

func errorText(err *llm.ToolError) string {
	if err == nil {
		return "Error: missing tool call"
	}
	return fmt.Sprintf("Error: %s", err)
}

// ToToolUnionParam converts an llm.Tool to an Anthropic ToolUnionParam.
// Schema keywords other than properties and required are passed through as extra fields.
func ToToolUnionParam(tool llm.Tool) anthropic.ToolUnionParam {
	schema := anthropic.ToolInputSchemaParam{
		Properties: tool.InputSchema["properties"],
		Required:   requiredFields(tool.InputSchema["required"]),
	}
	extra := lo.OmitByKeys(tool.InputSchema, []string{"type", "properties", "required"})
	if len(extra) > 0 {
		schema.ExtraFields = extra
	}

	toolParam := anthropic.ToolParam{
		Name:        tool.Name,
		Description: anthropic.String(tool.Description),
		InputSchema: schema,
	}
	return anthropic.ToolUnionParam{OfTool: &toolParam}
}

// ToToolUnionParams converts a slice of llm.Tools to Anthropic ToolUnionParams.
func ToToolUnionParams(tools []llm.Tool) []anthropic.ToolUnionParam {
	return lo.Map(tools, func(tool llm.Tool, _ int) anthropic.ToolUnionParam {
		return ToToolUnionParam(tool)
	})
}

func requiredFields(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		return lo.FilterMap(v, func(item interface{}, _ int) (string, bool) {
			s, ok := item.(string)
			return s, ok
		})
	default:
		return nil
	}
}

// FromMessage converts an Anthropic reply into an assistant message.
func FromMessage(message *anthropic.Message) llm.Message {
	reply := llm.NewAssistantMessage()
	if message == nil {
		return reply
	}
	for _, blockUnion := range message.Content {
		switch block := blockUnion.AsAny().(type) {
		case anthropic.TextBlock:
			reply.Content = append(reply.Content, llm.NewTextContent(block.Text))
		case anthropic.ToolUseBlock:
			reply.Content = append(reply.Content, fromToolUse(block.ID, block.Name, block.Input))
		}
	}
	return reply
}

func fromToolUse(id, name string, rawInput interface{}) llm.MessageContent {
	if !llm.IsValidFunctionName(name) {
		return llm.NewToolRequestErrorContent(id, llm.InvalidFunctionNameError(name))
	}

	input := map[string]interface{}{}
	if rawInput != nil {
		inputBytes, err := json.Marshal(rawInput)
		if err == nil {
			var decoded interface{}
			err = json.Unmarshal(inputBytes, &decoded)
			switch v := decoded.(type) {
			case map[string]interface{}:
				input = v
			case nil:
			default:
				err = fmt.Errorf("input is not a JSON object")
			}
		}
		if err != nil {
			return llm.NewToolRequestErrorContent(id, llm.NewInvalidParametersError(
				fmt.Sprintf("Could not interpret tool use parameters for id %s: %s", id, err)))
		}
	}
	return llm.NewToolRequestContent(id, llm.NewToolCall(name, input))
}

// FromUsage converts Anthropic token counts.
func FromUsage(usage anthropic.Usage) llm.Usage {
	return llm.NewUsage(lo.ToPtr(int(usage.InputTokens)), lo.ToPtr(int(usage.OutputTokens)), nil)
}
