package llm

import (
	"context"

	"github.com/rs/zerolog"
)

// LoggingMiddleware logs every Complete call with its usage or failure kind.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger.With().Str("component", "providerLogging").Logger(),
	}
}

// BeforeComplete implements Middleware.BeforeComplete.
func (m *LoggingMiddleware) BeforeComplete(ctx context.Context, system string, messages []Message, tools []Tool) ([]Message, error) {
	m.logger.Debug().
		Int("messages", len(messages)).
		Int("tools", len(tools)).
		Int("system_chars", len(system)).
		Msg("Provider call starting")
	return messages, nil
}

// AfterComplete implements Middleware.AfterComplete.
func (m *LoggingMiddleware) AfterComplete(ctx context.Context, reply Message, usage Usage) (Message, error) {
	event := m.logger.Info().
		Int("content_items", len(reply.Content)).
		Int("tool_requests", len(reply.ToolRequests()))
	if usage.InputTokens != nil {
		event = event.Int("input_tokens", *usage.InputTokens)
	}
	if usage.OutputTokens != nil {
		event = event.Int("output_tokens", *usage.OutputTokens)
	}
	if usage.TotalTokens != nil {
		event = event.Int("total_tokens", *usage.TotalTokens)
	}
	event.Msg("Provider call completed")
	return reply, nil
}

// OnError implements Middleware.OnError.
func (m *LoggingMiddleware) OnError(ctx context.Context, err error) error {
	event := m.logger.Warn().Err(err)
	if providerErr, ok := AsProviderError(err); ok {
		event = event.Str("kind", string(providerErr.Kind)).Int("status", providerErr.StatusCode)
	}
	event.Msg("Provider call failed")
	return err
}

var _ Middleware = (*LoggingMiddleware)(nil)
