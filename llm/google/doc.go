// Package google adapts the Gemini generateContent REST API to llm.Provider.
//
// Requests are built from typed wire structs: user messages map to the "user" role,
// everything else to "model"; tool requests become functionCall parts and tool
// results become functionResponse parts filtered to what the assistant may see.
// Tool input schemas are reduced to the attribute subset the API accepts.
//
// Responses are unescaped before decoding, since some models double-encode string
// payloads. Only the first candidate is read. The wire format has no call id, so the
// function name doubles as the tool request id.
//
// The API key is sent as the "key" query parameter. There is no retry: 429 and 5xx
// responses surface as llm.ErrorKindRequestFailed.
package google
