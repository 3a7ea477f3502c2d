package llm

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"
)

// ContentType represents the variant of a tool-result content item.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
)

// Annotations restrict who should see a tool-result content item.
type Annotations struct {
	Audience []Role
}

// Content is a single item of a tool result. Its JSON form is the MCP content shape.
type Content struct {
	Type        ContentType
	Text        string // For text items
	Data        string // Base64 payload for image items
	MIMEType    string // For image items
	Annotations *Annotations
}

// TextContent creates a text tool-result item.
func TextContent(text string) Content {
	return Content{Type: ContentTypeText, Text: text}
}

// ImageContent creates an image tool-result item from base64 data.
func ImageContent(data, mimeType string) Content {
	return Content{Type: ContentTypeImage, Data: data, MIMEType: mimeType}
}

// WithAudience returns a copy of the item scoped to the given roles.
func (c Content) WithAudience(roles ...Role) Content {
	c.Annotations = &Annotations{Audience: append([]Role(nil), roles...)}
	return c
}

// Audience returns the roles the item is scoped to, or nil when unrestricted.
func (c Content) Audience() []Role {
	if c.Annotations == nil {
		return nil
	}
	return c.Annotations.Audience
}

// VisibleTo reports whether the item may be shown to role.
// An item without an audience is visible to everyone.
func (c Content) VisibleTo(role Role) bool {
	audience := c.Audience()
	return audience == nil || lo.Contains(audience, role)
}

// Unannotated returns the item with its annotations stripped and its payload kept.
func (c Content) Unannotated() Content {
	c.Annotations = nil
	return c
}

// IsImage reports whether the item carries image data.
func (c Content) IsImage() bool {
	return c.Type == ContentTypeImage
}

// AssistantVisible filters items down to those the assistant may see, stripping annotations.
func AssistantVisible(contents []Content) []Content {
	visible := lo.Filter(contents, func(c Content, _ int) bool {
		return c.VisibleTo(RoleAssistant)
	})
	return lo.Map(visible, func(c Content, _ int) Content {
		return c.Unannotated()
	})
}

// MCP converts the item into its mcp-go representation.
func (c Content) MCP() mcp.Content {
	var annotated mcp.Annotated
	if audience := c.Audience(); len(audience) > 0 {
		annotated.Annotations = &mcp.Annotations{
			Audience: lo.Map(audience, func(r Role, _ int) mcp.Role { return mcp.Role(r) }),
		}
	}

	if c.Type == ContentTypeImage {
		image := mcp.NewImageContent(c.Data, c.MIMEType)
		image.Annotated = annotated
		return image
	}
	text := mcp.NewTextContent(c.Text)
	text.Annotated = annotated
	return text
}

// MarshalJSON encodes the item in the MCP content shape.
func (c Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.MCP())
}

// ContentFromMCP converts an mcp-go content item. Content kinds other than text and
// image are not represented and report false.
func ContentFromMCP(content mcp.Content) (Content, bool) {
	if text, ok := mcp.AsTextContent(content); ok {
		item := TextContent(text.Text)
		if text.Annotations != nil && len(text.Annotations.Audience) > 0 {
			item = item.WithAudience(rolesFromMCP(text.Annotations.Audience)...)
		}
		return item, true
	}
	if image, ok := mcp.AsImageContent(content); ok {
		item := ImageContent(image.Data, image.MIMEType)
		if image.Annotations != nil && len(image.Annotations.Audience) > 0 {
			item = item.WithAudience(rolesFromMCP(image.Annotations.Audience)...)
		}
		return item, true
	}
	return Content{}, false
}

func rolesFromMCP(roles []mcp.Role) []Role {
	return lo.Map(roles, func(r mcp.Role, _ int) Role { return Role(r) })
}

// ToolResponseFromMCP packages the result of an MCP tool call as a tool response item.
// A result flagged as an error becomes a failed response carrying the result text.
func ToolResponseFromMCP(id string, result *mcp.CallToolResult) MessageContent {
	if result == nil {
		return NewToolResponseErrorContent(id, NewExecutionError("tool returned no result"))
	}

	contents := make([]Content, 0, len(result.Content))
	for _, c := range result.Content {
		if item, ok := ContentFromMCP(c); ok {
			contents = append(contents, item)
		}
	}

	if result.IsError {
		texts := lo.FilterMap(contents, func(c Content, _ int) (string, bool) {
			return c.Text, c.Type == ContentTypeText && c.Text != ""
		})
		return NewToolResponseErrorContent(id, NewExecutionError(strings.Join(texts, "\n")))
	}
	return NewToolResponseContent(id, contents)
}

// ToolFromMCP converts an MCP tool definition into a Tool.
func ToolFromMCP(tool mcp.Tool) Tool {
	inputSchema := make(map[string]interface{})
	inputSchema["type"] = tool.InputSchema.Type
	if tool.InputSchema.Properties != nil {
		inputSchema["properties"] = tool.InputSchema.Properties
	}
	if len(tool.InputSchema.Required) > 0 {
		inputSchema["required"] = tool.InputSchema.Required
	}
	if len(tool.InputSchema.Defs) > 0 {
		inputSchema["$defs"] = tool.InputSchema.Defs
	}

	return Tool{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: inputSchema,
	}
}
