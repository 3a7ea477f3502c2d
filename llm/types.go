package llm

import (
	"encoding/json"
	"time"
)

// Role represents the role of a message in a conversation.
// Only two conversational roles exist; system instructions travel separately.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
// Content order is conversation order and adapters must preserve it.
type Message struct {
	Role    Role
	Created time.Time
	Content []MessageContent
}

// MessageContentType represents the variant held by a MessageContent.
type MessageContentType string

const (
	MessageContentTypeText         MessageContentType = "text"
	MessageContentTypeToolRequest  MessageContentType = "tool_request"
	MessageContentTypeToolResponse MessageContentType = "tool_response"
)

// MessageContent represents a single content item within a message.
// It can be text, a tool request, or a tool response.
type MessageContent struct {
	Type         MessageContentType
	Text         string        // For text items
	ToolRequest  *ToolRequest  // For tool request items
	ToolResponse *ToolResponse // For tool response items
}

// ToolCall is a named tool invocation with JSON object arguments.
type ToolCall struct {
	Name      string
	Arguments map[string]interface{}
}

// ToolRequest represents a tool invocation issued by the model, or a failure to parse one.
// Exactly one of Call and Err is set.
type ToolRequest struct {
	ID   string
	Call *ToolCall
	Err  *ToolError
}

// ToolResponse represents the result of executing a tool, keyed by the originating request ID.
// Exactly one of Result and Err is meaningful: Err non-nil means the tool failed.
type ToolResponse struct {
	ID     string
	Result []Content
	Err    *ToolError
}

// Tool declares a callable capability to the provider.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
}

// NewToolCall creates a ToolCall.
func NewToolCall(name string, arguments map[string]interface{}) *ToolCall {
	return &ToolCall{Name: name, Arguments: arguments}
}

// NewTextContent creates a text content item.
func NewTextContent(text string) MessageContent {
	return MessageContent{Type: MessageContentTypeText, Text: text}
}

// NewToolRequestContent creates a successful tool request content item.
func NewToolRequestContent(id string, call *ToolCall) MessageContent {
	return MessageContent{
		Type:        MessageContentTypeToolRequest,
		ToolRequest: &ToolRequest{ID: id, Call: call},
	}
}

// NewToolRequestErrorContent creates a tool request content item carrying a parse failure.
func NewToolRequestErrorContent(id string, err *ToolError) MessageContent {
	return MessageContent{
		Type:        MessageContentTypeToolRequest,
		ToolRequest: &ToolRequest{ID: id, Err: err},
	}
}

// NewToolResponseContent creates a successful tool response content item.
func NewToolResponseContent(id string, result []Content) MessageContent {
	return MessageContent{
		Type:         MessageContentTypeToolResponse,
		ToolResponse: &ToolResponse{ID: id, Result: result},
	}
}

// NewToolResponseErrorContent creates a failed tool response content item.
func NewToolResponseErrorContent(id string, err *ToolError) MessageContent {
	return MessageContent{
		Type:         MessageContentTypeToolResponse,
		ToolResponse: &ToolResponse{ID: id, Err: err},
	}
}

// NewUserMessage creates an empty user message stamped with the current time.
func NewUserMessage() Message {
	return Message{Role: RoleUser, Created: time.Now()}
}

// NewAssistantMessage creates an empty assistant message stamped with the current time.
func NewAssistantMessage() Message {
	return Message{Role: RoleAssistant, Created: time.Now()}
}

// NewTextMessage creates a new message with a single text item.
func NewTextMessage(role Role, text string) Message {
	return Message{
		Role:    role,
		Created: time.Now(),
		Content: []MessageContent{NewTextContent(text)},
	}
}

// WithText returns a copy of the message with a text item appended.
func (m Message) WithText(text string) Message {
	return m.with(NewTextContent(text))
}

// WithToolRequest returns a copy of the message with a successful tool request appended.
func (m Message) WithToolRequest(id string, call *ToolCall) Message {
	return m.with(NewToolRequestContent(id, call))
}

// WithToolResponse returns a copy of the message with a successful tool response appended.
func (m Message) WithToolResponse(id string, result []Content) Message {
	return m.with(NewToolResponseContent(id, result))
}

func (m Message) with(item MessageContent) Message {
	content := make([]MessageContent, 0, len(m.Content)+1)
	content = append(content, m.Content...)
	m.Content = append(content, item)
	return m
}

// Text concatenates every text item of the message, newline separated.
func (m Message) Text() string {
	var text string
	for _, item := range m.Content {
		if item.Type != MessageContentTypeText {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += item.Text
	}
	return text
}

// ToolRequests returns the tool request items of the message in order.
func (m Message) ToolRequests() []*ToolRequest {
	var requests []*ToolRequest
	for _, item := range m.Content {
		if item.Type == MessageContentTypeToolRequest && item.ToolRequest != nil {
			requests = append(requests, item.ToolRequest)
		}
	}
	return requests
}

// ToJSON marshals a message to JSON for debugging/logging purposes.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
