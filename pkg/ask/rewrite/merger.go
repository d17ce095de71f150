package rewrite

import (
	"context"
	"fmt"

	"ai-askflow-be/pkg/ask/chunker"
	"ai-askflow-be/pkg/llm"
)

// Merger issues the single streaming call that folds the rewrite set into
// one final question, batching partial output through a chunker policy.
type Merger struct {
	provider llm.LLMProvider
	model    string
	policy   chunker.Policy
}

func NewMerger(provider llm.LLMProvider, model string, policy chunker.Policy) *Merger {
	return &Merger{
		provider: provider,
		model:    model,
		policy:   policy,
	}
}

// Run streams the merged question. onChunk is invoked for every flush the
// chunker decides on, carrying the whole accumulation so far; an onChunk
// error aborts the stream. The returned string is always the complete final
// text, whether or not anything was ever flushed.
func (m *Merger) Run(ctx context.Context, history []llm.Message, onChunk func(accumulated string) error) (string, error) {
	deltas, err := m.provider.ChatStream(ctx, history, llm.WithModel(m.model))
	if err != nil {
		return "", fmt.Errorf("start merge stream: %w", err)
	}

	acc := chunker.New(m.policy)
	for delta := range deltas {
		if delta.Err != nil {
			return acc.Text(), fmt.Errorf("merge stream: %w", delta.Err)
		}

		payload, flush := acc.Append(delta.Content)
		if !flush {
			continue
		}
		if err := onChunk(payload); err != nil {
			return acc.Text(), err
		}
	}

	if err := ctx.Err(); err != nil {
		return acc.Text(), err
	}

	return acc.Text(), nil
}
