package google

import "github.com/aschepis/backscratcher/relay/llm"

/*
	REQUEST TYPES
*/

// generateContentRequest is the body of a generateContent call.
type generateContentRequest struct {
	SystemInstruction systemInstruction `json:"system_instruction"`
	Contents          []content         `json:"contents"`
	Tools             []tool            `json:"tools,omitempty"`
}

// systemInstruction carries the system prompt once, outside the conversation.
type systemInstruction struct {
	Parts []systemPart `json:"parts"`
}

// systemPart always sends its text field, even for an empty prompt.
type systemPart struct {
	Text string `json:"text"`
}

// content is one conversation turn: "user" or "model" plus its parts.
type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

// part holds exactly one of text, a function call or a function response.
type part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

// functionCall is a model-issued call; Args is omitted when there are no arguments.
type functionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// functionResponse returns a tool result under the originating request id.
type functionResponse struct {
	Name     string                  `json:"name"`
	Response functionResponsePayload `json:"response"`
}

type functionResponsePayload struct {
	Content llm.Content `json:"content"`
}

// tool groups the function declarations advertised to the model.
type tool struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

// functionDeclaration describes one callable function.
type functionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

/*
	RESPONSE TYPES

	Responses are read field by field with gjson; a field of an unexpected type is
	treated as absent instead of failing the whole response.
*/

// generateContentResponse is the decoded reply of a generateContent call.
type generateContentResponse struct {
	Candidates    []candidate
	UsageMetadata *usageMetadata
	ModelVersion  string
}

type candidate struct {
	Content      *candidateContent
	FinishReason string
}

type candidateContent struct {
	Role  string
	Parts []responsePart
}

// responsePart keeps presence information: a nil Text means no text field.
type responsePart struct {
	Text         *string
	FunctionCall *responseFunctionCall
}

// responseFunctionCall keeps Args untyped so a non-object value can be reported.
type responseFunctionCall struct {
	Name string
	Args interface{}
}

type usageMetadata struct {
	PromptTokenCount     *int
	CandidatesTokenCount *int
	TotalTokenCount      *int
}
