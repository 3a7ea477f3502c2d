package google

import (
	"strings"

	"github.com/tidwall/gjson"
)

// isContextLengthError recognises a 400 body reporting an input over the model's token limit.
func isContextLengthError(body []byte) bool {
	message := strings.ToLower(gjson.GetBytes(body, "error.message").String())
	if message == "" {
		return false
	}
	return strings.Contains(message, "exceeds the maximum number of tokens") ||
		(strings.Contains(message, "token count") && strings.Contains(message, "exceeds")) ||
		strings.Contains(message, "too long")
}
