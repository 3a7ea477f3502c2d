package llm

import (
	"context"
)

// Provider is implemented by every adapter bound to one concrete LLM HTTP API.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Complete sends the conversation and returns the assistant reply together with the
	// usage of this call only. messages and tools may be empty. Caller-owned messages
	// are never mutated.
	Complete(ctx context.Context, system string, messages []Message, tools []Tool) (Message, Usage, error)

	// TotalUsage returns the cumulative usage of all successful calls made through
	// this instance since it was created.
	TotalUsage() Usage
}

// Middleware provides hooks for decorating Provider calls.
type Middleware interface {
	// BeforeComplete is called before the call. It may replace the messages or
	// return an error to abort the call.
	BeforeComplete(ctx context.Context, system string, messages []Message, tools []Tool) ([]Message, error)

	// AfterComplete is called after a successful call and may replace the reply.
	AfterComplete(ctx context.Context, reply Message, usage Usage) (Message, error)

	// OnError is called when the call fails. Returning nil keeps the original error.
	OnError(ctx context.Context, err error) error
}

// MiddlewareFunc is a function type that implements Middleware.
type MiddlewareFunc struct {
	BeforeCompleteFunc func(ctx context.Context, system string, messages []Message, tools []Tool) ([]Message, error)
	AfterCompleteFunc  func(ctx context.Context, reply Message, usage Usage) (Message, error)
	OnErrorFunc        func(ctx context.Context, err error) error
}

// BeforeComplete calls the BeforeCompleteFunc if set.
func (f MiddlewareFunc) BeforeComplete(ctx context.Context, system string, messages []Message, tools []Tool) ([]Message, error) {
	if f.BeforeCompleteFunc != nil {
		return f.BeforeCompleteFunc(ctx, system, messages, tools)
	}
	return messages, nil
}

// AfterComplete calls the AfterCompleteFunc if set.
func (f MiddlewareFunc) AfterComplete(ctx context.Context, reply Message, usage Usage) (Message, error) {
	if f.AfterCompleteFunc != nil {
		return f.AfterCompleteFunc(ctx, reply, usage)
	}
	return reply, nil
}

// OnError calls the OnErrorFunc if set.
func (f MiddlewareFunc) OnError(ctx context.Context, err error) error {
	if f.OnErrorFunc != nil {
		return f.OnErrorFunc(ctx, err)
	}
	return err
}

// WrapWithMiddleware wraps a Provider with middleware and returns a new Provider.
// Usage accounting stays with the wrapped provider.
func WrapWithMiddleware(provider Provider, middleware ...Middleware) Provider {
	if len(middleware) == 0 {
		return provider
	}
	return &providerWithMiddleware{
		provider:   provider,
		middleware: middleware,
	}
}

type providerWithMiddleware struct {
	provider   Provider
	middleware []Middleware
}

// Complete implements Provider.Complete with middleware support.
func (p *providerWithMiddleware) Complete(ctx context.Context, system string, messages []Message, tools []Tool) (Message, Usage, error) {
	for _, mw := range p.middleware {
		var err error
		messages, err = mw.BeforeComplete(ctx, system, messages, tools)
		if err != nil {
			return Message{}, Usage{}, err
		}
	}

	reply, usage, err := p.provider.Complete(ctx, system, messages, tools)
	if err != nil {
		for _, mw := range p.middleware {
			if handled := mw.OnError(ctx, err); handled != nil {
				err = handled
			}
		}
		return Message{}, Usage{}, err
	}

	for i := len(p.middleware) - 1; i >= 0; i-- {
		reply, err = p.middleware[i].AfterComplete(ctx, reply, usage)
		if err != nil {
			return Message{}, Usage{}, err
		}
	}

	return reply, usage, nil
}

// TotalUsage implements Provider.TotalUsage.
func (p *providerWithMiddleware) TotalUsage() Usage {
	return p.provider.TotalUsage()
}

var _ Provider = (*providerWithMiddleware)(nil)
