package logroute

import (
	"fmt"
	"strings"
	"time"
)

// Level represents the severity of a [Record].
type Level string

const (
	// LevelDebug is the lowest severity.
	LevelDebug Level = "DEBUG"
	// LevelInfo is the default severity.
	LevelInfo Level = "INFO"
	// LevelWarning marks records that need attention but are not failures.
	LevelWarning Level = "WARNING"
	// LevelError is the highest severity; console output goes to stderr.
	LevelError Level = "ERROR"
)

var levelPriority = map[Level]int{
	LevelDebug:   10,
	LevelInfo:    20,
	LevelWarning: 30,
	LevelError:   40,
}

// ParseLevel parses a log level string and returns the corresponding [Level].
func ParseLevel(level string) (Level, error) {
	lvl := Level(strings.ToUpper(strings.TrimSpace(level)))
	if lvl == "WARN" {
		lvl = LevelWarning
	}

	if _, ok := levelPriority[lvl]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	return lvl, nil
}

// GetAllLevelStrings returns all valid level strings in ascending severity.
func GetAllLevelStrings() []string {
	return []string{"debug", "info", "warning", "error"}
}

// Theme selects the color scheme of an HTML log document.
type Theme string

const (
	// ThemeDark renders the HTML document on a dark background.
	ThemeDark Theme = "dark"
	// ThemeLight renders the HTML document on a light background.
	ThemeLight Theme = "light"
)

// ParseTheme parses an HTML theme string and returns the corresponding [Theme].
func ParseTheme(theme string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(theme)))
	if t != ThemeDark && t != ThemeLight {
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}

	return t, nil
}

// Record is one immutable log event. Records are created per logging call,
// dispatched to the selected facilities, and discarded.
type Record struct {
	// Time is when the record was created.
	Time time.Time
	// Message is the normalized message text.
	Message string
	// Nature is an optional free-form classification tag, orthogonal to Level.
	Nature string
	// Level is the record severity.
	Level Level
}
