package answer

import (
	"context"
	"fmt"

	"ai-askflow-be/pkg/ask/chunker"
	"ai-askflow-be/pkg/llm"
)

// Stage issues the final streaming reasoning call. Visible text goes through
// a chunker policy (ModeNone by default, for the conversational typing feel);
// thinking sentinels are reported as mode toggles and never reach the
// visible accumulation.
type Stage struct {
	provider llm.LLMProvider
	model    string
	policy   chunker.Policy
}

func NewStage(provider llm.LLMProvider, model string, policy chunker.Policy) *Stage {
	return &Stage{
		provider: provider,
		model:    model,
		policy:   policy,
	}
}

// Run streams the answer to the final question. onDelta receives each flush
// decided by the chunker policy, onToggle each thinking-mode transition, in
// stream order. An error from either callback aborts the stream. The
// returned string is the full visible accumulation (thinking text included,
// sentinels excluded), which is monotonic for the life of the session.
//
// A thinking segment left open at stream end is closed with a synthetic
// exit toggle so every entry is paired before the stage reports done.
func (s *Stage) Run(ctx context.Context, history []llm.Message, onDelta func(delta string) error, onToggle func(entered bool) error) (string, error) {
	deltas, err := s.provider.ChatStream(ctx, history, llm.WithModel(s.model))
	if err != nil {
		return "", fmt.Errorf("start answer stream: %w", err)
	}

	scanner := NewSentinelScanner()
	acc := chunker.New(s.policy)
	flushed := 0

	emit := func(segs []Segment) error {
		for _, seg := range segs {
			if seg.Toggle {
				if err := onToggle(seg.Entered); err != nil {
					return err
				}
				continue
			}
			payload, flush := acc.Append(seg.Text)
			if !flush {
				continue
			}
			if err := onDelta(payload); err != nil {
				return err
			}
			flushed = acc.Len()
		}
		return nil
	}

	for delta := range deltas {
		if delta.Err != nil {
			return acc.Text(), fmt.Errorf("answer stream: %w", delta.Err)
		}
		if err := emit(scanner.Feed(delta.Content)); err != nil {
			return acc.Text(), err
		}
	}

	if err := ctx.Err(); err != nil {
		return acc.Text(), err
	}

	if err := emit(scanner.Flush()); err != nil {
		return acc.Text(), err
	}

	// A batching policy can leave a tail that never crossed the threshold.
	// There is no terminal full-output event on this stage, so push it now.
	if s.policy.Mode != chunker.ModeNone && flushed < acc.Len() {
		if err := onDelta(acc.Text()); err != nil {
			return acc.Text(), err
		}
	}

	if scanner.Thinking() {
		if err := onToggle(false); err != nil {
			return acc.Text(), err
		}
	}

	return acc.Text(), nil
}
