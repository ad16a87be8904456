package logroute

import (
	"fmt"
	"strings"
)

// limiter truncates raw messages against the configured safety limits. It
// never fails; the returned string always satisfies every limit, with a
// visible marker appended wherever clipping occurred.
type limiter struct {
	maxMessageLength int
	maxMessageLines  int
	maxLineLength    int
}

// normalize converts CR/CRLF line endings to LF, then truncates in order:
// line count, per-line length, total length.
func (l limiter) normalize(message string) string {
	normalized := strings.ReplaceAll(message, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	if len(lines) > l.maxMessageLines {
		dropped := len(lines) - l.maxMessageLines
		lines = lines[:l.maxMessageLines]
		lines = append(lines, fmt.Sprintf("...[dropped %d line(s)]", dropped))
	}

	for i, line := range lines {
		runes := []rune(line)
		if len(runes) > l.maxLineLength {
			lines[i] = fmt.Sprintf("%s ...[line clipped at %d chars]",
				string(runes[:l.maxLineLength]), l.maxLineLength)
		}
	}

	return l.clipTotal(strings.Join(lines, "\n"))
}

// clipTotal enforces the total length limit, marker included, so the returned
// string never exceeds maxMessageLength.
func (l limiter) clipTotal(message string) string {
	runes := []rune(message)
	if len(runes) <= l.maxMessageLength {
		return message
	}

	marker := fmt.Sprintf(" ...[message clipped at %d chars]", l.maxMessageLength)
	markerRunes := []rune(marker)

	room := l.maxMessageLength - len(markerRunes)
	if room <= 0 {
		if len(markerRunes) > l.maxMessageLength {
			return string(markerRunes[len(markerRunes)-l.maxMessageLength:])
		}

		return marker
	}

	return string(runes[:room]) + marker
}
