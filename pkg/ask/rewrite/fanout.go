// Package rewrite implements the first two ask pipeline stages: the
// concurrent fan-out of cheap rewrite calls and the single streaming call
// that merges their results into one better question.
package rewrite

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ai-askflow-be/pkg/llm"
)

// Policy decides what happens when one of the N fan-out calls fails.
type Policy string

const (
	// PolicyFailFast cancels the remaining calls and fails the stage on the
	// first error. No partial rewrite set ever reaches the merge stage.
	PolicyFailFast Policy = "fail_fast"
	// PolicyDegrade drops failed calls and proceeds with the survivors.
	// The stage still fails if not a single rewrite succeeded.
	PolicyDegrade Policy = "degrade"
)

// Fanout issues N independent, non-streaming rewrite calls concurrently and
// joins on all of them before returning (fan-out/fan-in barrier, not a race).
type Fanout struct {
	provider llm.LLMProvider
	model    string
	count    int
	policy   Policy
}

func NewFanout(provider llm.LLMProvider, model string, count int, policy Policy) *Fanout {
	if count < 1 {
		count = 1
	}
	if policy != PolicyDegrade {
		policy = PolicyFailFast
	}
	return &Fanout{
		provider: provider,
		model:    model,
		count:    count,
		policy:   policy,
	}
}

func (f *Fanout) Count() int {
	return f.count
}

// Run launches all calls with the identical history and blocks until every
// one has resolved. Results come back in launch order, not completion order.
func (f *Fanout) Run(ctx context.Context, history []llm.Message) ([]string, error) {
	results := make([]string, f.count)
	errs := make([]error, f.count)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < f.count; i++ {
		g.Go(func() error {
			out, err := f.provider.Chat(gctx, history, llm.WithModel(f.model))
			if err != nil {
				if f.policy == PolicyFailFast {
					return fmt.Errorf("rewrite call %d: %w", i, err)
				}
				errs[i] = err
				return nil
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if f.policy == PolicyDegrade {
		kept := make([]string, 0, f.count)
		for i, out := range results {
			if errs[i] == nil {
				kept = append(kept, out)
			}
		}
		if len(kept) == 0 {
			return nil, fmt.Errorf("all %d rewrite calls failed, first error: %w", f.count, firstError(errs))
		}
		return kept, nil
	}

	return results, nil
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
