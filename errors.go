package logroute

import "errors"

var (
	// ErrConfiguration indicates an invalid router or facility configuration.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrUnknownLevel indicates an unrecognized log level string.
	ErrUnknownLevel = errors.New("unknown log level")
	// ErrUnknownTheme indicates an unrecognized HTML theme string.
	ErrUnknownTheme = errors.New("unknown html theme")
	// ErrTooManyHandles indicates an explicit handle set larger than
	// [Config.MaxLogHandlesPerCall].
	ErrTooManyHandles = errors.New("too many log handles")
	// ErrUnknownHandle indicates a handle that names no registered facility.
	ErrUnknownHandle = errors.New("unknown log handle")
)
