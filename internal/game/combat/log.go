package combat

import "fmt"

// Log is the append-only list of lines produced during one input cycle.
// The caller clears it before each cycle.
type Log struct {
	lines []string
}

// Write appends one line.
func (l *Log) Write(line string) {
	l.lines = append(l.lines, line)
}

// Writef appends one formatted line.
func (l *Log) Writef(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the lines written since the last Clear.
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Len returns the number of lines written since the last Clear.
func (l *Log) Len() int { return len(l.lines) }

// Clear discards every line.
func (l *Log) Clear() {
	l.lines = nil
}
