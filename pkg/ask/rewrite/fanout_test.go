package rewrite

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-askflow-be/pkg/llm"
)

// fanoutStub hands each Chat invocation to a per-call function, keyed by
// arrival order.
type fanoutStub struct {
	calls  atomic.Int32
	onCall func(n int32, ctx context.Context) (string, error)
}

func (f *fanoutStub) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	n := f.calls.Add(1)
	return f.onCall(n, ctx)
}

func (f *fanoutStub) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.StreamDelta, error) {
	return nil, errors.New("not used")
}

func (f *fanoutStub) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// The stage is a barrier: Run must not return before every one of the N
// calls has resolved, whatever order they finish in.
func TestFanoutBarrier(t *testing.T) {
	for _, n := range []int{1, 2, 5, 8} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			var done atomic.Int32
			stub := &fanoutStub{onCall: func(call int32, ctx context.Context) (string, error) {
				// Later launches finish first to make completion order
				// the reverse of launch order.
				time.Sleep(time.Duration(n-int(call)+1) * 5 * time.Millisecond)
				done.Add(1)
				return fmt.Sprintf("rewrite %d", call), nil
			}}

			fanout := NewFanout(stub, "small-model", n, PolicyFailFast)
			results, err := fanout.Run(context.Background(), nil)
			require.NoError(t, err)

			assert.Equal(t, int32(n), done.Load(), "Run returned before all calls resolved")
			assert.Len(t, results, n)
			for _, r := range results {
				assert.NotEmpty(t, r)
			}
		})
	}
}

func TestFanoutFailFast(t *testing.T) {
	var canceled atomic.Int32
	stub := &fanoutStub{onCall: func(call int32, ctx context.Context) (string, error) {
		if call == 1 {
			return "", errors.New("model unreachable")
		}
		// Siblings should be released by the group context, not run out
		// their own clock.
		select {
		case <-ctx.Done():
			canceled.Add(1)
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
			return "too slow", nil
		}
	}}

	fanout := NewFanout(stub, "small-model", 4, PolicyFailFast)

	start := time.Now()
	results, err := fanout.Run(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unreachable")
	assert.Nil(t, results, "no partial set may leave a failed stage")
	assert.Less(t, time.Since(start), time.Second, "siblings were not canceled")
	assert.Equal(t, int32(3), canceled.Load())
}

func TestFanoutDegradeKeepsSurvivors(t *testing.T) {
	stub := &fanoutStub{onCall: func(call int32, ctx context.Context) (string, error) {
		if call%2 == 0 {
			return "", errors.New("flaky call")
		}
		return fmt.Sprintf("rewrite %d", call), nil
	}}

	fanout := NewFanout(stub, "small-model", 5, PolicyDegrade)
	results, err := fanout.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Len(t, results, 3)
	for _, r := range results {
		assert.NotEmpty(t, r)
	}
}

func TestFanoutDegradeFailsWhenNothingSurvives(t *testing.T) {
	stub := &fanoutStub{onCall: func(call int32, ctx context.Context) (string, error) {
		return "", errors.New("everything is down")
	}}

	fanout := NewFanout(stub, "small-model", 3, PolicyDegrade)
	results, err := fanout.Run(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 rewrite calls failed")
	assert.Nil(t, results)
}

func TestFanoutCountFloor(t *testing.T) {
	fanout := NewFanout(&fanoutStub{onCall: func(int32, context.Context) (string, error) {
		return "one", nil
	}}, "small-model", 0, PolicyFailFast)

	assert.Equal(t, 1, fanout.Count())
}
