// Package llm provides the provider-neutral layer shared by every LLM adapter.
//
// It defines the canonical conversation model, the Provider contract adapters
// implement, the error taxonomy they report, and the response utilities they share.
//
// # Core Concepts
//
//  1. Messages: a Message has a Role (user or assistant), a creation time and an
//     ordered list of MessageContent items: text, tool requests and tool responses.
//
//  2. Tools: a Tool advertises a callable capability with a JSON schema. A model
//     invocation arrives as a ToolRequest; the executed result goes back as a
//     ToolResponse holding Content items, each optionally scoped to an audience.
//
//  3. Provider: Complete sends one turn and returns the assistant reply with the
//     usage of that call. TotalUsage reports everything an instance has consumed.
//
//  4. Errors: call-level failures are *ProviderError values of a closed set of
//     kinds. Tool-level failures are *ToolError values embedded in content, so a
//     bad tool name never fails the whole call.
//
//  5. Middleware: WrapWithMiddleware decorates a Provider with cross-cutting hooks
//     such as NewLoggingMiddleware.
//
// Usage Example
//
//	provider, err := google.New(google.Config{APIKey: key}, logger)
//	if err != nil {
//	    return err
//	}
//
//	reply, usage, err := provider.Complete(ctx, "You are terse.", []llm.Message{
//	    llm.NewTextMessage(llm.RoleUser, "Hello!"),
//	}, nil)
//
// # Extension Points
//
// To add a new provider:
//  1. Implement the Provider interface with a UsageCollector for TotalUsage
//  2. Translate Message and Tool values to the wire format and back
//  3. Classify HTTP failures with HandleResponse and a ContextLengthPredicate
//  4. Validate model-issued function names with IsValidFunctionName
package llm
