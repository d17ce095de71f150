package rewrite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-askflow-be/pkg/ask/chunker"
	"ai-askflow-be/pkg/llm"
)

type mergeStub struct {
	deltas    []string
	streamErr error
}

func (m *mergeStub) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (m *mergeStub) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (m *mergeStub) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.StreamDelta, error) {
	ch := make(chan llm.StreamDelta)
	go func() {
		defer close(ch)
		for _, d := range m.deltas {
			select {
			case ch <- llm.StreamDelta{Content: d}:
			case <-ctx.Done():
				return
			}
		}
		if m.streamErr != nil {
			ch <- llm.StreamDelta{Err: m.streamErr}
		}
	}()
	return ch, nil
}

func TestMergerChunkedFlushes(t *testing.T) {
	merger := NewMerger(&mergeStub{
		deltas: []string{"What ", "causes ", "Rayleigh ", "scattering?"},
	}, "large-model", chunker.Policy{Mode: chunker.ModeDouble, Base: 10})

	var flushes []string
	final, err := merger.Run(context.Background(), nil, func(accumulated string) error {
		flushes = append(flushes, accumulated)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "What causes Rayleigh scattering?", final)
	// Base 10 trips on "What causes " (12 chars), doubled threshold 20 trips
	// on "What causes Rayleigh " (21 chars); the tail never crosses 40.
	assert.Equal(t, []string{"What causes ", "What causes Rayleigh "}, flushes)
}

// The final text is complete even when no chunk was ever flushed; the
// terminal stage event is what the client must rely on.
func TestMergerShortStreamNeverFlushes(t *testing.T) {
	merger := NewMerger(&mergeStub{
		deltas: []string{"Short?"},
	}, "large-model", chunker.Policy{Mode: chunker.ModeDouble, Base: 126})

	flushes := 0
	final, err := merger.Run(context.Background(), nil, func(string) error {
		flushes++
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Short?", final)
	assert.Zero(t, flushes)
}

func TestMergerStreamErrorKeepsPartial(t *testing.T) {
	merger := NewMerger(&mergeStub{
		deltas:    []string{"half a "},
		streamErr: errors.New("connection reset"),
	}, "large-model", chunker.Policy{Mode: chunker.ModeDouble, Base: 126})

	final, err := merger.Run(context.Background(), nil, func(string) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "half a ", final)
}

func TestMergerChunkCallbackErrorAborts(t *testing.T) {
	boom := errors.New("sink closed")
	merger := NewMerger(&mergeStub{
		deltas: []string{"0123456789", "ten more.."},
	}, "large-model", chunker.Policy{Mode: chunker.ModeDouble, Base: 5})

	_, err := merger.Run(context.Background(), nil, func(string) error { return boom })
	require.ErrorIs(t, err, boom)
}
