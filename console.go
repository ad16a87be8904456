package logroute

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"

	"go.jacobcolvin.com/logroute/highlight"
)

// HandleConsole is the reserved handle of the always-present console facility.
const HandleConsole = "console"

// Console color palette. Styles are downsampled (or stripped entirely) by the
// colorprofile writer, so facilities can render unconditionally.
var (
	styleBase      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	styleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	styleQuoteMark = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleString    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleKey       = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	styleNumber    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	stylePunct     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleWarning   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleTime      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleBracket   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// consoleFacility writes normalized, control-character-stripped, optionally
// colorized text to standard output (standard error for ERROR records).
type consoleFacility struct {
	mu              sync.Mutex
	stdout          *colorprofile.Writer
	stderr          *colorprofile.Writer
	detected        colorprofile.Profile
	color           bool
	colorizeTimeout time.Duration
}

func newConsoleFacility(color bool, colorizeTimeout time.Duration) *consoleFacility {
	c := &consoleFacility{
		stdout:          colorprofile.NewWriter(os.Stdout, os.Environ()),
		stderr:          colorprofile.NewWriter(os.Stderr, os.Environ()),
		colorizeTimeout: colorizeTimeout,
	}
	c.detected = c.stdout.Profile
	c.setColor(color)

	return c
}

func (c *consoleFacility) setColor(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.color = enabled
	if enabled {
		c.stdout.Profile = c.detected
		c.stderr.Profile = c.detected
	} else {
		c.stdout.Profile = colorprofile.NoTTY
		c.stderr.Profile = colorprofile.NoTTY
	}
}

func (c *consoleFacility) setColorizeTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.colorizeTimeout = d
}

func (c *consoleFacility) write(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := strings.Split(stripControl(rec.Message), "\n")

	var sb strings.Builder

	sb.WriteString(styleBracket.Render("["))
	sb.WriteString(styleTime.Render(rec.Time.Format("15:04:05")))
	sb.WriteString(styleBracket.Render("]"))
	sb.WriteString(" ")
	sb.WriteString(badgeStyle(rec.Level).Render(badgeIcon(rec.Level)))
	sb.WriteString(" ")

	if rec.Nature != "" {
		sb.WriteString(styleDim.Render("[" + stripControl(rec.Nature) + "]"))
		sb.WriteString(" ")
	}

	sb.WriteString(c.renderLine(lines[0], rec.Level))

	for _, line := range lines[1:] {
		sb.WriteString("\n\t")
		sb.WriteString(c.renderLine(line, rec.Level))
	}

	var w io.Writer = c.stdout
	if rec.Level == LevelError {
		w = c.stderr
	}

	_, err := fmt.Fprintln(w, sb.String())
	if err != nil {
		return fmt.Errorf("writing console line: %w", err)
	}

	return nil
}

// renderLine colorizes one line by token kind, falling back to the base
// style when the highlight budget is exhausted.
func (c *consoleFacility) renderLine(line string, level Level) string {
	base := styleBase
	if level == LevelDebug {
		base = styleDim
	}

	spans, err := highlight.Line(line, time.Now().Add(c.colorizeTimeout))
	if err != nil {
		return base.Render(line)
	}

	return highlight.Apply(line, spans, func(kind highlight.Kind, text string) string {
		switch kind {
		case highlight.Key:
			return styleKey.Render(text)
		case highlight.Quote:
			return styleQuoteMark.Render(text)
		case highlight.String:
			return styleString.Render(text)
		case highlight.Number:
			return styleNumber.Render(text)
		case highlight.Punct:
			return stylePunct.Render(text)
		default:
			return base.Render(text)
		}
	})
}

func badgeIcon(level Level) string {
	switch level {
	case LevelError:
		return "×"
	case LevelWarning, LevelDebug:
		return "›"
	default:
		return "»"
	}
}

func badgeStyle(level Level) lipgloss.Style {
	switch level {
	case LevelError:
		return styleError
	case LevelWarning:
		return styleWarning
	case LevelDebug:
		return styleDim
	default:
		return styleQuoteMark
	}
}

// stripControl replaces C0 control characters other than newline and tab,
// and C1 controls, with U+FFFD to prevent terminal escape injection.
func stripControl(text string) string {
	var sb strings.Builder

	sb.Grow(len(text))

	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			sb.WriteRune(r)
		case r <= 0x1F || (r >= 0x7F && r <= 0x9F):
			sb.WriteRune('�')
		default:
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
