// Package answer implements the final ask pipeline stage: the streaming
// reasoning call whose output is split into visible text and
// sentinel-delimited thinking segments.
package answer

import "strings"

const (
	// SentinelThinkOpen and SentinelThinkClose delimit the model's
	// reasoning inside the raw token stream.
	SentinelThinkOpen  = "<think>"
	SentinelThinkClose = "</think>"
)

// Segment is one ordered piece of scanned stream output: either visible
// text or a thinking-mode toggle.
type Segment struct {
	Text    string
	Toggle  bool
	Entered bool // valid only when Toggle is set
}

// SentinelScanner finds the thinking sentinels in a delta stream regardless
// of how the tokenizer split them. It holds back the shortest suffix that
// could still turn into a sentinel, so text is released as early as possible
// while a sentinel broken across two or more deltas is still recognized.
// When the model emits a sentinel as one exact delta, the output degenerates
// to plain exact-token matching.
type SentinelScanner struct {
	pending  string
	thinking bool
}

func NewSentinelScanner() *SentinelScanner {
	return &SentinelScanner{}
}

// Thinking reports whether the scanner is currently inside a thinking segment.
func (s *SentinelScanner) Thinking() bool {
	return s.thinking
}

// Feed consumes one delta and returns the segments it completes, in order.
func (s *SentinelScanner) Feed(delta string) []Segment {
	s.pending += delta

	var segs []Segment
	for {
		idx, sentinel := nextSentinel(s.pending)
		if idx < 0 {
			break
		}
		if idx > 0 {
			segs = append(segs, Segment{Text: s.pending[:idx]})
		}
		entered := sentinel == SentinelThinkOpen
		s.thinking = entered
		segs = append(segs, Segment{Toggle: true, Entered: entered})
		s.pending = s.pending[idx+len(sentinel):]
	}

	hold := holdback(s.pending)
	if cut := len(s.pending) - hold; cut > 0 {
		segs = append(segs, Segment{Text: s.pending[:cut]})
		s.pending = s.pending[cut:]
	}

	return segs
}

// Flush releases whatever is still held back. Call it once, at stream end.
func (s *SentinelScanner) Flush() []Segment {
	if s.pending == "" {
		return nil
	}
	seg := Segment{Text: s.pending}
	s.pending = ""
	return []Segment{seg}
}

// nextSentinel returns the position and value of the earliest complete
// sentinel in text, or -1.
func nextSentinel(text string) (int, string) {
	iOpen := strings.Index(text, SentinelThinkOpen)
	iClose := strings.Index(text, SentinelThinkClose)

	switch {
	case iOpen < 0 && iClose < 0:
		return -1, ""
	case iClose < 0, iOpen >= 0 && iOpen < iClose:
		return iOpen, SentinelThinkOpen
	default:
		return iClose, SentinelThinkClose
	}
}

// holdback returns the length of the longest suffix of text that is a
// proper prefix of either sentinel.
func holdback(text string) int {
	maxHold := len(SentinelThinkClose) - 1
	if len(text) < maxHold {
		maxHold = len(text)
	}
	for k := maxHold; k > 0; k-- {
		suffix := text[len(text)-k:]
		if strings.HasPrefix(SentinelThinkOpen, suffix) || strings.HasPrefix(SentinelThinkClose, suffix) {
			return k
		}
	}
	return 0
}
