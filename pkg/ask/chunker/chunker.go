// Package chunker implements the flush policy for streamed model output:
// the rule deciding when accumulated text is pushed to the client as a
// discrete event. Batching bounds event frequency on fast token streams
// without bounding payload size, because every batched flush carries the
// whole accumulation to date rather than a delta.
package chunker

import "strings"

// Mode selects how the flush threshold grows after each flush.
type Mode string

const (
	// ModeDouble doubles the threshold on every flush.
	ModeDouble Mode = "double"
	// ModeAdd raises the threshold by a fixed increment on every flush.
	ModeAdd Mode = "add"
	// ModeNone batches nothing: every delta is flushed as-is.
	ModeNone Mode = "none"
)

// Policy is the fixed, per-stage flush rule. A stage must keep one policy
// for its whole lifetime.
type Policy struct {
	Mode Mode
	// Base is the initial threshold in characters for the batching modes.
	Base int
	// Increment is the additive step for ModeAdd.
	Increment int
}

// Accumulator applies one Policy to one stream. Append returns the payload
// to flush and whether to flush at all. For the batching modes the payload
// is the entire accumulation so far; for ModeNone it is the delta itself.
type Accumulator struct {
	policy    Policy
	threshold int
	text      strings.Builder
}

func New(policy Policy) *Accumulator {
	return &Accumulator{
		policy:    policy,
		threshold: policy.Base,
	}
}

func (a *Accumulator) Append(delta string) (payload string, flush bool) {
	a.text.WriteString(delta)

	switch a.policy.Mode {
	case ModeNone:
		return delta, delta != ""
	case ModeAdd:
		if a.text.Len() >= a.threshold {
			a.threshold += a.policy.Increment
			return a.text.String(), true
		}
	default: // ModeDouble
		if a.text.Len() >= a.threshold {
			a.threshold *= 2
			return a.text.String(), true
		}
	}

	return "", false
}

// Text returns the full accumulation, independent of what was flushed.
func (a *Accumulator) Text() string {
	return a.text.String()
}

// Len returns the length of the full accumulation in bytes.
func (a *Accumulator) Len() int {
	return a.text.Len()
}
