package llm

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitDebugTrace(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	EmitDebugTrace(logger,
		map[string]string{"model": "m"},
		map[string]interface{}{"contents": []string{"hi"}},
		[]byte(`{"candidates":[]}`),
		NewUsage(lo.ToPtr(10), lo.ToPtr(5), nil))

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "debug", event["level"])
	assert.Contains(t, event["model_config"], `"model": "m"`)
	assert.Contains(t, event["input"], `"contents"`)
	assert.Contains(t, event["output"], `"candidates": []`)
	assert.EqualValues(t, 10, event["input_tokens"])
	assert.EqualValues(t, 5, event["output_tokens"])
	assert.EqualValues(t, 15, event["total_tokens"])
}

func TestEmitDebugTrace_Disabled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	EmitDebugTrace(logger, nil, nil, nil, Usage{})

	assert.Zero(t, buf.Len())
}

func TestEmitDebugTrace_UnserialisableValues(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	EmitDebugTrace(logger, make(chan int), func() {}, []byte("not json"), Usage{})

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "", event["model_config"])
	assert.Equal(t, "", event["input"])
	assert.Equal(t, "not json", event["output"])
	assert.EqualValues(t, 0, event["total_tokens"])
}
