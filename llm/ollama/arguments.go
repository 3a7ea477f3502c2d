package ollama

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// coerceArguments checks required parameters and converts argument values to the
// types their schema declares. Small local models often send numbers and booleans
// as strings. Parameters absent from the schema pass through unchanged.
func coerceArguments(toolName string, args map[string]interface{}, schema map[string]interface{}) (map[string]interface{}, error) {
	for _, reqParam := range requiredFields(schema) {
		val, exists := args[reqParam]
		if !exists {
			return nil, fmt.Errorf("missing required parameter '%s' for tool '%s' (provided: %v)",
				reqParam, toolName, lo.Keys(args))
		}
		if isEmptyValue(val) {
			return nil, fmt.Errorf("required parameter '%s' for tool '%s' cannot be empty", reqParam, toolName)
		}
	}

	properties, _ := schema["properties"].(map[string]interface{})

	result := make(map[string]interface{}, len(args))
	for k, v := range args {
		propSchema, exists := properties[k]
		if !exists {
			result[k] = v
			continue
		}
		converted, err := convertValueToType(v, getPropertyType(propSchema), k)
		if err != nil {
			return nil, fmt.Errorf("failed to convert parameter '%s' for tool '%s': %w", k, toolName, err)
		}
		result[k] = converted
	}
	return result, nil
}

func requiredFields(schema map[string]interface{}) []string {
	switch v := schema["required"].(type) {
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

// isEmptyValue reports nil, "" and empty arrays or objects.
func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	}
	return false
}

// getPropertyType returns the declared type of a property, "string" when undeclared.
func getPropertyType(propSchema interface{}) string {
	prop, _ := propSchema.(map[string]interface{})
	if declared, ok := prop["type"].(string); ok {
		return declared
	}
	return "string"
}

var booleanWords = map[string]bool{
	"true": true, "1": true, "yes": true, "on": true,
	"false": false, "0": false, "no": false, "off": false,
}

// convertValueToType converts v to the JSON type named by the schema.
// Strings holding JSON arrays or objects are decoded for array and object properties.
func convertValueToType(v interface{}, targetType, paramName string) (interface{}, error) {
	raw := v
	if str, ok := v.(string); ok {
		v = strings.TrimSpace(str)
	}

	var (
		converted interface{}
		err       error
	)
	switch targetType {
	case "integer":
		converted, err = cast.ToIntE(v)
	case "number":
		converted, err = cast.ToFloat64E(v)
	case "boolean":
		converted, err = toBoolean(v)
	case "string":
		if raw == nil {
			return "", nil
		}
		converted, err = cast.ToStringE(raw)
	case "array":
		converted, err = decodeJSONString[[]interface{}](v)
	case "object":
		converted, err = decodeJSONString[map[string]interface{}](v)
	default:
		return raw, nil
	}

	if err != nil {
		if str, ok := v.(string); ok {
			return nil, fmt.Errorf("parameter '%s': cannot convert '%s' to %s", paramName, str, targetType)
		}
		return nil, fmt.Errorf("parameter '%s': cannot convert %T to %s", paramName, v, targetType)
	}
	return converted, nil
}

func toBoolean(v interface{}) (bool, error) {
	if str, ok := v.(string); ok {
		b, known := booleanWords[strings.ToLower(str)]
		if !known {
			return false, fmt.Errorf("unknown boolean %q", str)
		}
		return b, nil
	}
	return cast.ToBoolE(v)
}

// decodeJSONString passes values of type T through and decodes strings holding JSON.
func decodeJSONString[T any](v interface{}) (interface{}, error) {
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected %T", v)
	}
	var decoded T
	if err := json.Unmarshal([]byte(str), &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
