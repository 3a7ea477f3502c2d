package google

import (
	"encoding/json"
	"fmt"

	"github.com/aschepis/backscratcher/relay/llm"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// buildRequest assembles the request body for one Complete call.
func buildRequest(system string, messages []llm.Message, tools []llm.Tool) generateContentRequest {
	req := generateContentRequest{
		SystemInstruction: systemInstruction{Parts: []systemPart{{Text: system}}},
		Contents:          messagesToGoogle(messages),
	}
	if len(tools) > 0 {
		req.Tools = []tool{{FunctionDeclarations: toolsToGoogle(tools)}}
	}
	return req
}

// messagesToGoogle converts messages to conversation turns, keeping message and item order.
func messagesToGoogle(messages []llm.Message) []content {
	return lo.Map(messages, func(msg llm.Message, _ int) content {
		role := roleModel
		if msg.Role == llm.RoleUser {
			role = roleUser
		}
		parts := make([]part, 0, len(msg.Content))
		for _, item := range msg.Content {
			parts = append(parts, contentToParts(item)...)
		}
		return content{Role: role, Parts: parts}
	})
}

// contentToParts maps one message item to zero or more parts.
// Unknown item kinds produce nothing.
func contentToParts(item llm.MessageContent) []part {
	switch item.Type {
	case llm.MessageContentTypeText:
		if item.Text == "" {
			return nil
		}
		return []part{{Text: item.Text}}

	case llm.MessageContentTypeToolRequest:
		request := item.ToolRequest
		if request == nil {
			return nil
		}
		if request.Err != nil || request.Call == nil {
			return []part{errorPart(request.Err)}
		}
		call := &functionCall{Name: request.Call.Name}
		if len(request.Call.Arguments) > 0 {
			call.Args = request.Call.Arguments
		}
		return []part{{FunctionCall: call}}

	case llm.MessageContentTypeToolResponse:
		response := item.ToolResponse
		if response == nil {
			return nil
		}
		if response.Err != nil {
			return []part{errorPart(response.Err)}
		}
		// Images are not forwarded by this API; only text-like items become parts.
		visible := lo.Reject(llm.AssistantVisible(response.Result), func(c llm.Content, _ int) bool {
			return c.IsImage()
		})
		return lo.Map(visible, func(c llm.Content, _ int) part {
			return part{FunctionResponse: &functionResponse{
				Name:     response.ID,
				Response: functionResponsePayload{Content: c},
			}}
		})

	default:
		return nil
	}
}

func errorPart(err *llm.ToolError) part {
	if err == nil {
		return part{Text: "Error: missing tool call"}
	}
	return part{Text: fmt.Sprintf("Error: %s", err)}
}

// toolsToGoogle converts tool declarations. Parameters are sent only for schemas
// with declared properties.
func toolsToGoogle(tools []llm.Tool) []functionDeclaration {
	return lo.Map(tools, func(t llm.Tool, _ int) functionDeclaration {
		decl := functionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}
		if hasProperties(t.InputSchema) {
			decl.Parameters = filterSchema(t.InputSchema, "")
		}
		return decl
	})
}

// decodeResponse unescapes double-encoded strings in the raw body and reads the
// fields the adapter uses. Only a body that is not JSON at all is an error.
func decodeResponse(body []byte) (generateContentResponse, error) {
	var resp generateContentResponse

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	unescaped, err := json.Marshal(llm.UnescapeJSONValues(raw))
	if err != nil {
		return resp, fmt.Errorf("failed to re-encode response: %w", err)
	}

	root := gjson.ParseBytes(unescaped)
	for _, c := range arrayOf(root.Get("candidates")) {
		resp.Candidates = append(resp.Candidates, readCandidate(c))
	}
	if usage := root.Get("usageMetadata"); usage.IsObject() {
		resp.UsageMetadata = &usageMetadata{
			PromptTokenCount:     intOf(usage.Get("promptTokenCount")),
			CandidatesTokenCount: intOf(usage.Get("candidatesTokenCount")),
			TotalTokenCount:      intOf(usage.Get("totalTokenCount")),
		}
	}
	resp.ModelVersion = stringOf(root.Get("modelVersion"))
	return resp, nil
}

func readCandidate(c gjson.Result) candidate {
	cand := candidate{FinishReason: stringOf(c.Get("finishReason"))}
	content := c.Get("content")
	if !content.IsObject() {
		return cand
	}
	cand.Content = &candidateContent{Role: stringOf(content.Get("role"))}
	for _, p := range arrayOf(content.Get("parts")) {
		if part, ok := readPart(p); ok {
			cand.Content.Parts = append(cand.Content.Parts, part)
		}
	}
	return cand
}

// readPart reports false for a part carrying neither usable text nor a function call.
func readPart(p gjson.Result) (responsePart, bool) {
	var part responsePart
	if text := p.Get("text"); text.Type == gjson.String {
		part.Text = lo.ToPtr(text.String())
	}
	if call := p.Get("functionCall"); call.IsObject() {
		if name := call.Get("name"); name.Type == gjson.String {
			part.FunctionCall = &responseFunctionCall{Name: name.String()}
			if args := call.Get("args"); args.Exists() && args.Type != gjson.Null {
				part.FunctionCall.Args = args.Value()
			}
		}
	}
	return part, part.Text != nil || part.FunctionCall != nil
}

func arrayOf(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

func intOf(r gjson.Result) *int {
	if r.Type != gjson.Number {
		return nil
	}
	return lo.ToPtr(int(r.Int()))
}

func stringOf(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.String()
}

// responseToMessage converts the first candidate into an assistant message.
// The API carries no call identifier, so a tool request's id is its function name;
// two calls to the same function in one turn share an id. A function call without
// args produces no item at all.
func responseToMessage(resp generateContentResponse) llm.Message {
	message := llm.NewAssistantMessage()
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return message
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		switch {
		case p.Text != nil:
			message.Content = append(message.Content, llm.NewTextContent(*p.Text))

		case p.FunctionCall != nil:
			name := p.FunctionCall.Name
			if !llm.IsValidFunctionName(name) {
				message.Content = append(message.Content,
					llm.NewToolRequestErrorContent(name, llm.InvalidFunctionNameError(name)))
				continue
			}
			if p.FunctionCall.Args == nil {
				continue
			}
			args, ok := p.FunctionCall.Args.(map[string]interface{})
			if !ok {
				message.Content = append(message.Content, llm.NewToolRequestErrorContent(name,
					llm.NewInvalidParametersError(fmt.Sprintf("arguments for '%s' are not a JSON object", name))))
				continue
			}
			message.Content = append(message.Content,
				llm.NewToolRequestContent(name, llm.NewToolCall(name, args)))
		}
	}
	return message
}

// usageFromResponse reads token counts, leaving unreported counts absent.
func usageFromResponse(resp generateContentResponse) llm.Usage {
	if resp.UsageMetadata == nil {
		return llm.Usage{}
	}
	return llm.NewUsage(
		resp.UsageMetadata.PromptTokenCount,
		resp.UsageMetadata.CandidatesTokenCount,
		resp.UsageMetadata.TotalTokenCount,
	)
}
