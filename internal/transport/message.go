package transport

import (
	"fmt"
	"strings"
)

// Field is one key=value pair of a trigger message. Order is preserved on
// the wire, so samplers control how the host sees their output.
type Field struct {
	Key   string
	Value string
}

// FormatMessage encodes a command string into the flat byte buffer the host
// expects: the single or double quotes used to group arguments are stripped,
// spaces inside a quoted segment survive, and the result carries exactly one
// trailing NUL.
func FormatMessage(message string) []byte {
	out := make([]byte, 0, len(message)+1)

	for i := 0; i < len(message); i++ {
		c := message[i]
		if c == '"' || c == '\'' {
			continue
		}
		out = append(out, c)
	}

	return append(out, 0)
}

// AddEventCommand builds the host command registering a named event.
func AddEventCommand(event string) string {
	return fmt.Sprintf("--add event '%s'", event)
}

// TriggerCommand builds the host command firing a named event with the given
// fields attached.
func TriggerCommand(event string, fields []Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--trigger '%s'", event)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s='%s'", f.Key, f.Value)
	}

	return b.String()
}
