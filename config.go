package logroute

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Default safety limits.
const (
	DefaultMaxMessageLength     = 32_768
	DefaultMaxMessageLines      = 500
	DefaultMaxLineLength        = 4_096
	DefaultMaxLogHandlesPerCall = 64
	DefaultColorizeTimeout      = 15 * time.Millisecond
	DefaultMaxHTMLDocumentBytes = 10 * 1024 * 1024
	DefaultMaxHTMLTitleLength   = 256
	DefaultMaxWritesPerWindow   = 200
	DefaultThrottleWindow       = time.Second
	DefaultPlainMaxFileSize     = 200 * 1024 * 1024
)

// Flags holds CLI flag names for router configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Level                string
	Color                string
	MaxMessageLength     string
	MaxMessageLines      string
	MaxLineLength        string
	MaxLogHandlesPerCall string
	ColorizeTimeout      string
	MaxHTMLDocumentBytes string
	MaxHTMLTitleLength   string
	MaxWritesPerWindow   string
	ThrottleWindow       string
	PlainMaxFileSize     string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags:                f,
		Level:                "info",
		Color:                true,
		MaxMessageLength:     DefaultMaxMessageLength,
		MaxMessageLines:      DefaultMaxMessageLines,
		MaxLineLength:        DefaultMaxLineLength,
		MaxLogHandlesPerCall: DefaultMaxLogHandlesPerCall,
		ColorizeTimeout:      DefaultColorizeTimeout,
		MaxHTMLDocumentBytes: DefaultMaxHTMLDocumentBytes,
		MaxHTMLTitleLength:   DefaultMaxHTMLTitleLength,
		MaxWritesPerWindow:   DefaultMaxWritesPerWindow,
		ThrottleWindow:       DefaultThrottleWindow,
		PlainMaxFileSize:     DefaultPlainMaxFileSize,
	}
}

// Config holds router limits and console settings.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags], or load values from a YAML file with [LoadConfig].
// Use [New] (or [Configure] for the process-wide default) to build a
// [Router].
type Config struct {
	Flags Flags `yaml:"-"`

	// Level is the minimum level to emit.
	Level string `yaml:"logger_level"`
	// Color enables ANSI color on the console facility.
	Color bool `yaml:"logger_color"`

	// Message safety limits.
	MaxMessageLength     int `yaml:"max_message_length"`
	MaxMessageLines      int `yaml:"max_message_lines"`
	MaxLineLength        int `yaml:"max_line_length"`
	MaxLogHandlesPerCall int `yaml:"max_log_handles_per_call"`

	// ColorizeTimeout bounds syntax highlighting for both console and HTML
	// output; on timeout the message is still published as plain text.
	ColorizeTimeout time.Duration `yaml:"colorize_timeout"`

	// HTML facility limits.
	MaxHTMLDocumentBytes int64 `yaml:"max_html_document_bytes"`
	MaxHTMLTitleLength   int   `yaml:"max_html_title_length"`

	// Throttle: at most MaxWritesPerWindow admissions per handle per
	// ThrottleWindow; excess writes are dropped.
	MaxWritesPerWindow int           `yaml:"max_writes_per_window"`
	ThrottleWindow     time.Duration `yaml:"throttle_window"`

	// PlainMaxFileSize triggers size-based rotation of plain file facilities.
	PlainMaxFileSize int64 `yaml:"plain_log_max_file_size_bytes"`
}

// NewConfig returns a new [Config] with default flag names and limits.
// Use [Config.RegisterFlags] to add CLI flags, or set values directly.
func NewConfig() *Config {
	f := Flags{
		Level:                "log-level",
		Color:                "log-color",
		MaxMessageLength:     "max-message-length",
		MaxMessageLines:      "max-message-lines",
		MaxLineLength:        "max-line-length",
		MaxLogHandlesPerCall: "max-log-handles-per-call",
		ColorizeTimeout:      "colorize-timeout",
		MaxHTMLDocumentBytes: "max-html-document-bytes",
		MaxHTMLTitleLength:   "max-html-title-length",
		MaxWritesPerWindow:   "max-writes-per-window",
		ThrottleWindow:       "throttle-window",
		PlainMaxFileSize:     "plain-max-file-size",
	}

	return f.NewConfig()
}

// RegisterFlags adds router configuration flags to the given
// [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, c.Level,
		fmt.Sprintf("minimum log level, one of: %s", GetAllLevelStrings()))
	flags.BoolVar(&c.Color, c.Flags.Color, c.Color,
		"enable ANSI color on console output")
	flags.IntVar(&c.MaxMessageLength, c.Flags.MaxMessageLength, c.MaxMessageLength,
		"maximum message length in chars")
	flags.IntVar(&c.MaxMessageLines, c.Flags.MaxMessageLines, c.MaxMessageLines,
		"maximum lines per message")
	flags.IntVar(&c.MaxLineLength, c.Flags.MaxLineLength, c.MaxLineLength,
		"maximum length per message line in chars")
	flags.IntVar(&c.MaxLogHandlesPerCall, c.Flags.MaxLogHandlesPerCall, c.MaxLogHandlesPerCall,
		"maximum explicit handles per log call")
	flags.DurationVar(&c.ColorizeTimeout, c.Flags.ColorizeTimeout, c.ColorizeTimeout,
		"time budget for syntax highlighting")
	flags.Int64Var(&c.MaxHTMLDocumentBytes, c.Flags.MaxHTMLDocumentBytes, c.MaxHTMLDocumentBytes,
		"maximum HTML document size before forced rotation")
	flags.IntVar(&c.MaxHTMLTitleLength, c.Flags.MaxHTMLTitleLength, c.MaxHTMLTitleLength,
		"maximum HTML document title length in chars")
	flags.IntVar(&c.MaxWritesPerWindow, c.Flags.MaxWritesPerWindow, c.MaxWritesPerWindow,
		"maximum admitted writes per handle per throttle window")
	flags.DurationVar(&c.ThrottleWindow, c.Flags.ThrottleWindow, c.ThrottleWindow,
		"throttle window length")
	flags.Int64Var(&c.PlainMaxFileSize, c.Flags.PlainMaxFileSize, c.PlainMaxFileSize,
		"plain log file size triggering rotation")
}

// RegisterCompletions registers shell completions for router flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Level,
		cobra.FixedCompletions(GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Level, err)
	}

	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{
		c.Flags.MaxMessageLength,
		c.Flags.MaxMessageLines,
		c.Flags.MaxLineLength,
		c.Flags.MaxLogHandlesPerCall,
		c.Flags.ColorizeTimeout,
		c.Flags.MaxHTMLDocumentBytes,
		c.Flags.MaxHTMLTitleLength,
		c.Flags.MaxWritesPerWindow,
		c.Flags.ThrottleWindow,
		c.Flags.PlainMaxFileSize,
	} {
		regErr := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if regErr != nil {
			return fmt.Errorf("registering %s completion: %w", flag, regErr)
		}
	}

	return nil
}

// Validate checks that every limit is positive.
func (c *Config) Validate() error {
	for name, value := range map[string]int64{
		"max_message_length":            int64(c.MaxMessageLength),
		"max_message_lines":             int64(c.MaxMessageLines),
		"max_line_length":               int64(c.MaxLineLength),
		"max_log_handles_per_call":      int64(c.MaxLogHandlesPerCall),
		"colorize_timeout":              int64(c.ColorizeTimeout),
		"max_html_document_bytes":       c.MaxHTMLDocumentBytes,
		"max_html_title_length":         int64(c.MaxHTMLTitleLength),
		"max_writes_per_window":         int64(c.MaxWritesPerWindow),
		"throttle_window":               int64(c.ThrottleWindow),
		"plain_log_max_file_size_bytes": c.PlainMaxFileSize,
	} {
		if value <= 0 {
			return fmt.Errorf("%w: %s must be > 0", ErrConfiguration, name)
		}
	}

	return nil
}

// NewRouter creates a [Router] using this [Config]. It delegates to [New].
func (c *Config) NewRouter() (*Router, error) {
	return New(c)
}

// LoadConfig reads a YAML configuration file over the defaults from
// [NewConfig]. See [ConfigSchema] for the recognized keys.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	cfg := NewConfig()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing config %q: %w", ErrConfiguration, path, err)
	}

	return cfg, nil
}
