package logroute

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.jacobcolvin.com/logroute/htmlsafe"
	"go.jacobcolvin.com/logroute/rotate"
)

// facility is one configured output target. Implementations serialize their
// own write path; the router never holds a facility lock while dispatching
// to another facility.
type facility interface {
	write(rec Record) error
}

// Router fans log records out to named facilities, applying message limits
// and per-handle throttling before each write. Safe for concurrent use.
//
// Create instances with [New], or use the process-wide default via
// [Configure] and [Default].
type Router struct {
	mu         sync.RWMutex
	level      Level
	limits     limiter
	cfg        Config
	facilities map[string]facility
	// order preserves registration order for deterministic fan-out when no
	// explicit handle set is given.
	order    []string
	throttle *throttle
	console  *consoleFacility
}

// New creates a [Router] from cfg with the console facility registered under
// the reserved [HandleConsole] handle. A nil cfg uses defaults.
func New(cfg *Config) (*Router, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	console := newConsoleFacility(cfg.Color, cfg.ColorizeTimeout)

	r := &Router{
		level: level,
		limits: limiter{
			maxMessageLength: cfg.MaxMessageLength,
			maxMessageLines:  cfg.MaxMessageLines,
			maxLineLength:    cfg.MaxLineLength,
		},
		cfg:        *cfg,
		facilities: map[string]facility{HandleConsole: console},
		order:      []string{HandleConsole},
		throttle:   newThrottle(cfg.MaxWritesPerWindow, cfg.ThrottleWindow),
		console:    console,
	}

	return r, nil
}

// Reconfigure mutates the router's limits in place, keeping the facility
// registry. It serializes against in-flight [Router.Log] calls.
func (r *Router) Reconfigure(cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}

	err := cfg.Validate()
	if err != nil {
		return err
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.level = level
	r.limits = limiter{
		maxMessageLength: cfg.MaxMessageLength,
		maxMessageLines:  cfg.MaxMessageLines,
		maxLineLength:    cfg.MaxLineLength,
	}
	r.cfg = *cfg
	r.throttle.setLimits(cfg.MaxWritesPerWindow, cfg.ThrottleWindow)
	r.console.setColor(cfg.Color)
	r.console.setColorizeTimeout(cfg.ColorizeTimeout)

	return nil
}

// SetLevel changes the minimum level to emit.
func (r *Router) SetLevel(level Level) error {
	parsed, err := ParseLevel(string(level))
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.level = parsed

	return nil
}

// SetColor toggles ANSI color on the console facility.
func (r *Router) SetColor(enabled bool) {
	r.console.setColor(enabled)
}

// AddLogFile registers a plain-text file facility under handle. Registering
// an existing handle replaces the prior facility.
func (r *Router) AddLogFile(handle string, cfg FileConfig) error {
	err := r.validateRegistration(handle)
	if err != nil {
		return err
	}

	r.mu.RLock()
	maxFileSize := r.cfg.PlainMaxFileSize
	r.mu.RUnlock()

	fac, err := newFileFacility(cfg, maxFileSize)
	if err != nil {
		return fmt.Errorf("registering file facility %q: %w", handle, err)
	}

	r.register(handle, fac)

	return nil
}

// AddHTMLLogFile registers a streaming HTML file facility under handle.
// Registering an existing handle replaces the prior facility.
func (r *Router) AddHTMLLogFile(handle string, cfg HTMLConfig) error {
	err := r.validateRegistration(handle)
	if err != nil {
		return err
	}

	r.mu.RLock()
	colorizeTimeout := r.cfg.ColorizeTimeout
	maxDocumentBytes := r.cfg.MaxHTMLDocumentBytes
	maxTitleLength := r.cfg.MaxHTMLTitleLength
	r.mu.RUnlock()

	if len([]rune(cfg.Title)) > maxTitleLength {
		return fmt.Errorf("%w: title is too long (max %d chars)", ErrConfiguration, maxTitleLength)
	}

	fac, err := newHTMLFacility(cfg, colorizeTimeout, maxDocumentBytes)
	if err != nil {
		return fmt.Errorf("registering html facility %q: %w", handle, err)
	}

	r.register(handle, fac)

	return nil
}

func (r *Router) validateRegistration(handle string) error {
	if handle == HandleConsole {
		return fmt.Errorf("%w: handle %q is reserved", ErrConfiguration, HandleConsole)
	}

	return validateHandle(handle)
}

func (r *Router) register(handle string, fac facility) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.facilities[handle]; !ok {
		r.order = append(r.order, handle)
	}

	r.facilities[handle] = fac
}

// Debug logs a message at [LevelDebug]. With no handles the record goes to
// every registered facility.
func (r *Router) Debug(message string, handles ...string) error {
	return r.Log(message, LevelDebug, "", handles)
}

// Info logs a message at [LevelInfo].
func (r *Router) Info(message string, handles ...string) error {
	return r.Log(message, LevelInfo, "", handles)
}

// Warning logs a message at [LevelWarning].
func (r *Router) Warning(message string, handles ...string) error {
	return r.Log(message, LevelWarning, "", handles)
}

// Error logs a message at [LevelError].
func (r *Router) Error(message string, handles ...string) error {
	return r.Log(message, LevelError, "", handles)
}

// Log routes a message to the selected facilities. An empty handle set
// selects every registered facility. Dispatch is independent per facility:
// a throttled or failed write on one facility never prevents delivery to
// the others, and per-record write failures are absorbed and reported on
// the console rather than returned.
func (r *Router) Log(message string, level Level, nature string, handles []string) error {
	parsed, err := ParseLevel(string(level))
	if err != nil {
		return err
	}

	r.mu.RLock()
	minLevel := r.level
	limits := r.limits
	maxHandles := r.cfg.MaxLogHandlesPerCall
	selected, err := r.resolveHandles(handles, maxHandles)
	r.mu.RUnlock()

	if err != nil {
		return err
	}

	if levelPriority[parsed] < levelPriority[minLevel] {
		return nil
	}

	rec := Record{
		Time:    time.Now(),
		Message: limits.normalize(message),
		Nature:  nature,
		Level:   parsed,
	}

	for _, handle := range selected {
		if !r.throttle.admit(handle, time.Now()) {
			continue
		}

		r.mu.RLock()
		fac, ok := r.facilities[handle]
		r.mu.RUnlock()

		if !ok {
			continue
		}

		err = fac.write(rec)
		if err != nil {
			r.reportWriteFailure(handle, err)
		}
	}

	return nil
}

// resolveHandles is called with r.mu held for reading.
func (r *Router) resolveHandles(handles []string, maxHandles int) ([]string, error) {
	if len(handles) == 0 {
		return slices.Clone(r.order), nil
	}

	if len(handles) > maxHandles {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyHandles, len(handles), maxHandles)
	}

	for _, handle := range handles {
		if _, ok := r.facilities[handle]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
		}
	}

	return slices.Clone(handles), nil
}

// reportWriteFailure emits a diagnostic for a failed facility write on the
// console facility directly, bypassing throttling and the failed facility.
func (r *Router) reportWriteFailure(handle string, err error) {
	message := fmt.Sprintf("Failed to write log into facility %q: %v", handle, err)
	if errors.Is(err, rotate.ErrUnsafeTarget) || errors.Is(err, htmlsafe.ErrUnsafeFragment) {
		message = fmt.Sprintf("Security incident in facility %q: %v", handle, err)
	}

	r.consoleDiagnostic(message)
}

func (r *Router) consoleDiagnostic(message string) {
	_ = r.console.write(Record{
		Time:    time.Now(),
		Message: message,
		Level:   LevelError,
	})
}

// ThrottleStats returns counters for writes dropped by the throttle.
func (r *Router) ThrottleStats() ThrottleStats {
	return r.throttle.stats()
}

// Handles returns the registered facility handles in registration order.
func (r *Router) Handles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// LogAvailableFacilities writes a descriptor list of every registered
// facility to all facilities at [LevelInfo].
func (r *Router) LogAvailableFacilities() error {
	r.mu.RLock()

	descriptors := make([]string, 0, len(r.order))

	for _, handle := range r.order {
		descriptors = append(descriptors, "- "+r.describeFacility(handle))
	}

	r.mu.RUnlock()

	message := "Available logging facilities:\n" + strings.Join(descriptors, "\n")

	return r.Info(message)
}

// describeFacility is called with r.mu held for reading.
func (r *Router) describeFacility(handle string) string {
	switch fac := r.facilities[handle].(type) {
	case *consoleFacility:
		return handle + ": stdout/stderr"
	case *fileFacility:
		return fmt.Sprintf("%s: %s", handle, fac.target.Path)
	case *htmlFacility:
		return fmt.Sprintf("%s: file://%s", handle, fac.target.Path)
	default:
		return handle
	}
}
