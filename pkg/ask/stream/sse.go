package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteSSE renders one event in text/event-stream framing. Data is JSON
// encoded; multi-line payloads get one "data:" line per line as the SSE
// format requires (JSON never contains raw newlines, so in practice one).
func WriteSSE(w io.Writer, ev Event) error {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Kind, err)
	}

	var b strings.Builder
	b.WriteString("id: ")
	b.WriteString(ev.Id)
	b.WriteString("\nevent: ")
	b.WriteString(string(ev.Kind))
	b.WriteString("\n")
	for _, line := range strings.Split(string(payload), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write event %s: %w", ev.Kind, err)
	}
	return nil
}
