package llm

import (
	"sync"

	"github.com/samber/lo"
)

// Usage represents token usage information. A nil field means the provider did not report it.
type Usage struct {
	InputTokens  *int
	OutputTokens *int
	TotalTokens  *int
}

// NewUsage builds a Usage, deriving the total from input and output when it is absent
// and both are present. Values are never invented from nothing.
func NewUsage(inputTokens, outputTokens, totalTokens *int) Usage {
	if totalTokens == nil && inputTokens != nil && outputTokens != nil {
		totalTokens = lo.ToPtr(*inputTokens + *outputTokens)
	}
	return Usage{
		InputTokens:  copyInt(inputTokens),
		OutputTokens: copyInt(outputTokens),
		TotalTokens:  copyInt(totalTokens),
	}
}

// IsEmpty reports whether no counts were reported.
func (u Usage) IsEmpty() bool {
	return u.InputTokens == nil && u.OutputTokens == nil && u.TotalTokens == nil
}

// Add returns the field-wise sum of u and other. A field stays nil only if it is nil in both.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  addInt(u.InputTokens, other.InputTokens),
		OutputTokens: addInt(u.OutputTokens, other.OutputTokens),
		TotalTokens:  addInt(u.TotalTokens, other.TotalTokens),
	}
}

func addInt(a, b *int) *int {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return lo.ToPtr(*b)
	case b == nil:
		return lo.ToPtr(*a)
	default:
		return lo.ToPtr(*a + *b)
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return lo.ToPtr(*v)
}

// UsageCollector accumulates usage across every successful call of one provider instance.
// It is safe for concurrent use.
type UsageCollector struct {
	mu    sync.Mutex
	usage Usage
}

// NewUsageCollector creates an empty collector.
func NewUsageCollector() *UsageCollector {
	return &UsageCollector{}
}

// Add folds one call's usage into the running total.
func (c *UsageCollector) Add(usage Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage = c.usage.Add(usage)
}

// Usage returns a snapshot of the running total.
func (c *UsageCollector) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return NewUsage(c.usage.InputTokens, c.usage.OutputTokens, c.usage.TotalTokens)
}
