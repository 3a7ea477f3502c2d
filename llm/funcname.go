package llm

import "regexp"

var (
	invalidFunctionNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	validFunctionName        = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// SanitizeFunctionName replaces every character outside [a-zA-Z0-9_-] with an underscore.
// An empty name becomes "_" so the result always validates.
func SanitizeFunctionName(name string) string {
	if name == "" {
		return "_"
	}
	return invalidFunctionNameChars.ReplaceAllString(name, "_")
}

// IsValidFunctionName reports whether name is non-empty and made only of [a-zA-Z0-9_-].
func IsValidFunctionName(name string) bool {
	return validFunctionName.MatchString(name)
}
