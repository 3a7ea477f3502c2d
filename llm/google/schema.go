package google

import "github.com/samber/lo"

// acceptedSchemaAttributes is the JSON-schema subset the API accepts.
var acceptedSchemaAttributes = []string{
	"type",
	"format",
	"description",
	"nullable",
	"enum",
	"maxItems",
	"minItems",
	"properties",
	"required",
	"items",
}

// filterSchema returns a copy of node restricted to acceptedSchemaAttributes.
// parentKey is the key node was found under. Directly under "properties" every key
// is a property name and is kept; each property's own schema is filtered in turn.
// Outside "properties" a node without "type" is given "type": "string".
func filterSchema(node map[string]interface{}, parentKey string) map[string]interface{} {
	insideProperties := parentKey == "properties"

	filtered := make(map[string]interface{}, len(node))
	for key, value := range node {
		if !insideProperties && !lo.Contains(acceptedSchemaAttributes, key) {
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			filtered[key] = filterSchema(nested, key)
			continue
		}
		filtered[key] = value
	}

	if !insideProperties {
		if _, ok := filtered["type"]; !ok {
			filtered["type"] = "string"
		}
	}
	return filtered
}

// hasProperties reports whether a tool input schema declares at least one property.
func hasProperties(schema map[string]interface{}) bool {
	properties, ok := schema["properties"].(map[string]interface{})
	return ok && len(properties) > 0
}
