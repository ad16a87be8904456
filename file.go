package logroute

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.jacobcolvin.com/logroute/rotate"
)

// FileConfig configures a plain-text file facility.
type FileConfig struct {
	// Path is the target log file. Missing parent directories are created at
	// registration.
	Path string
	// RotateOnStart rotates any existing target file once at registration.
	RotateOnStart bool
	// RotationsToKeep is the number of rotated generations to preserve. Zero
	// deletes the existing file on rotation instead of renaming it.
	RotationsToKeep int
}

const maxHandleLength = 64

var handleRE = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validateHandle(handle string) error {
	if len(handle) > maxHandleLength {
		return fmt.Errorf("%w: handle is too long (max %d chars)", ErrConfiguration, maxHandleLength)
	}

	if !handleRE.MatchString(handle) {
		return fmt.Errorf("%w: handle must be alphanumeric with optional underscores", ErrConfiguration)
	}

	return nil
}

// fileFacility appends normalized records to a plain-text file, one record
// per line, rotating by size.
type fileFacility struct {
	mu          sync.Mutex
	target      rotate.Target
	maxFileSize int64
	// degraded is set when rotation-time hardening rejects the target; the
	// facility then drops writes instead of crashing the process.
	degraded bool
}

func newFileFacility(cfg FileConfig, maxFileSize int64) (*fileFacility, error) {
	if cfg.RotationsToKeep < 0 {
		return nil, fmt.Errorf("%w: rotations to keep must be >= 0", ErrConfiguration)
	}

	target := rotate.Target{Path: cfg.Path, Keep: cfg.RotationsToKeep}

	err := rotate.Prepare(cfg.Path)
	if err != nil {
		return nil, err
	}

	if cfg.RotateOnStart {
		err = target.Rotate()
		if err != nil {
			return nil, err
		}
	}

	err = touch(cfg.Path)
	if err != nil {
		return nil, err
	}

	return &fileFacility{target: target, maxFileSize: maxFileSize}, nil
}

func (f *fileFacility) write(rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.degraded {
		return nil
	}

	err := rotate.CheckTarget(f.target.Path)
	if err != nil {
		f.degraded = true

		return err
	}

	line := formatPlainLine(rec)

	size := currentSize(f.target.Path)
	if size+int64(len(line)) > f.maxFileSize {
		err = f.target.Rotate()
		if err != nil {
			f.degraded = true

			return err
		}
	}

	return appendString(f.target.Path, line)
}

// formatPlainLine renders one record as a single line, flattening embedded
// newlines.
func formatPlainLine(rec Record) string {
	var sb strings.Builder

	sb.WriteString("[")
	sb.WriteString(rec.Time.Format("2006-01-02 15:04:05"))
	sb.WriteString("] [")
	sb.WriteString(string(rec.Level))
	sb.WriteString("]")

	if rec.Nature != "" {
		sb.WriteString(" [")
		sb.WriteString(flatten(rec.Nature))
		sb.WriteString("]")
	}

	sb.WriteString(" ")
	sb.WriteString(flatten(rec.Message))
	sb.WriteString("\n")

	return sb.String()
}

var flattenRE = regexp.MustCompile(`\s*\n\s*`)

func flatten(text string) string {
	return strings.TrimSpace(flattenRE.ReplaceAllString(text, " "))
}

func touch(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating log file %q: %w", path, err)
	}

	return file.Close()
}

func currentSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}

	return info.Size()
}

func appendString(path, s string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %q: %w", path, err)
	}

	_, err = file.WriteString(s)
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("appending to log file %q: %w", path, err)
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("closing log file %q: %w", path, err)
	}

	return nil
}
