package stream

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDeliversInEmissionOrder(t *testing.T) {
	sess := NewSession(64)
	ctx := context.Background()

	go func() {
		defer sess.Close()
		for i := 0; i < 50; i++ {
			_ = sess.Emit(ctx, KindActionOutput, i)
		}
	}()

	var got []int
	for ev := range sess.Events() {
		got = append(got, ev.Data.(int))
	}

	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v, "event %d out of order", i)
	}
}

func TestSessionAssignsUniqueEventIds(t *testing.T) {
	sess := NewSession(16)
	ctx := context.Background()

	go func() {
		defer sess.Close()
		for i := 0; i < 16; i++ {
			_ = sess.Emit(ctx, KindAnswerOutput, nil)
		}
	}()

	seen := map[string]bool{}
	for ev := range sess.Events() {
		assert.NotEmpty(t, ev.Id)
		assert.False(t, seen[ev.Id], "duplicate event id %s", ev.Id)
		seen[ev.Id] = true
	}
	assert.Len(t, seen, 16)
}

// A dead transport cancels the session context; a blocked Emit must unwind
// instead of wedging the pipeline goroutine forever.
func TestSessionEmitFailsOnCanceledContext(t *testing.T) {
	sess := NewSession(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sess.Emit(ctx, KindAskStarted, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), string(KindAskStarted))
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	sess := NewSession(1)
	sess.Close()
	assert.NotPanics(t, sess.Close)

	_, open := <-sess.Events()
	assert.False(t, open)
}

func TestWriteSSEFraming(t *testing.T) {
	var buf strings.Builder
	ev := Event{
		Id:   "evt-1",
		Kind: KindActionOutput,
		Data: map[string]string{"chunk": "hello"},
	}

	require.NoError(t, WriteSSE(&buf, ev))

	want := "id: evt-1\nevent: action-output\ndata: {\"chunk\":\"hello\"}\n\n"
	assert.Equal(t, want, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("broken pipe")
}

func TestWriteSSEPropagatesWriteError(t *testing.T) {
	err := WriteSSE(failingWriter{}, Event{Id: "evt-2", Kind: KindAskEnded, Data: nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}
