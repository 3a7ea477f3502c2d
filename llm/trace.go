package llm

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// EmitDebugTrace logs the model configuration, request payload, response and usage of
// one call as a single debug event. It never fails; unserialisable values log as "".
func EmitDebugTrace(logger zerolog.Logger, modelConfig, payload, response interface{}, usage Usage) {
	event := logger.Debug()
	if !event.Enabled() {
		return
	}
	event.
		Str("model_config", prettyJSON(modelConfig)).
		Str("input", prettyJSON(payload)).
		Str("output", prettyJSON(response)).
		Int("input_tokens", valueOrZero(usage.InputTokens)).
		Int("output_tokens", valueOrZero(usage.OutputTokens)).
		Int("total_tokens", valueOrZero(usage.TotalTokens)).
		Msg("Provider debug trace")
}

func prettyJSON(v interface{}) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	if raw, ok := v.([]byte); ok {
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return string(raw)
		}
		v = decoded
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
