package llm

import "strings"

// escapeReplacements is applied in order: doubled escapes first, then single ones.
var escapeReplacements = [][2]string{
	{`\\n`, "\n"},
	{`\\t`, "\t"},
	{`\\r`, "\r"},
	{`\\"`, `"`},
	{`\n`, "\n"},
	{`\t`, "\t"},
	{`\r`, "\r"},
	{`\"`, `"`},
}

// UnescapeJSONValues walks a decoded JSON value and collapses escaped newline, tab,
// carriage-return and quote sequences left in string leaves by double-encoding models.
// Objects and arrays keep their structure; the input is not modified.
func UnescapeJSONValues(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, inner := range v {
			out[key] = UnescapeJSONValues(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = UnescapeJSONValues(inner)
		}
		return out
	case string:
		return UnescapeString(v)
	default:
		return value
	}
}

// UnescapeString applies the escape collapsing of UnescapeJSONValues to a single string.
func UnescapeString(s string) string {
	for _, r := range escapeReplacements {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	return s
}
