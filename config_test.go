package logroute_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/logroute"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := logroute.NewConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.True(t, cfg.Color)
	assert.Equal(t, logroute.DefaultMaxMessageLength, cfg.MaxMessageLength)
	assert.Equal(t, logroute.DefaultMaxMessageLines, cfg.MaxMessageLines)
	assert.Equal(t, logroute.DefaultMaxLineLength, cfg.MaxLineLength)
	assert.Equal(t, logroute.DefaultMaxLogHandlesPerCall, cfg.MaxLogHandlesPerCall)
	assert.Equal(t, logroute.DefaultColorizeTimeout, cfg.ColorizeTimeout)
	assert.Equal(t, int64(logroute.DefaultMaxHTMLDocumentBytes), cfg.MaxHTMLDocumentBytes)
	assert.Equal(t, logroute.DefaultMaxHTMLTitleLength, cfg.MaxHTMLTitleLength)
	assert.Equal(t, logroute.DefaultMaxWritesPerWindow, cfg.MaxWritesPerWindow)
	assert.Equal(t, logroute.DefaultThrottleWindow, cfg.ThrottleWindow)
	assert.Equal(t, int64(logroute.DefaultPlainMaxFileSize), cfg.PlainMaxFileSize)

	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		mutate      func(*logroute.Config)
		expectError bool
	}{
		"defaults are valid": {
			mutate: func(_ *logroute.Config) {},
		},
		"zero message length": {
			mutate:      func(cfg *logroute.Config) { cfg.MaxMessageLength = 0 },
			expectError: true,
		},
		"negative line limit": {
			mutate:      func(cfg *logroute.Config) { cfg.MaxLineLength = -1 },
			expectError: true,
		},
		"zero throttle window": {
			mutate:      func(cfg *logroute.Config) { cfg.ThrottleWindow = 0 },
			expectError: true,
		},
		"zero html document bytes": {
			mutate:      func(cfg *logroute.Config) { cfg.MaxHTMLDocumentBytes = 0 },
			expectError: true,
		},
		"zero plain file size": {
			mutate:      func(cfg *logroute.Config) { cfg.PlainMaxFileSize = 0 },
			expectError: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := logroute.NewConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.expectError {
				require.ErrorIs(t, err, logroute.ErrConfiguration)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRegisterFlags(t *testing.T) {
	t.Parallel()

	cfg := logroute.NewConfig()

	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())

	require.NoError(t, cmd.Flags().Set("log-level", "debug"))
	require.NoError(t, cmd.Flags().Set("max-message-lines", "7"))
	require.NoError(t, cmd.Flags().Set("throttle-window", "5s"))

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, 7, cfg.MaxMessageLines)
	assert.Equal(t, 5*time.Second, cfg.ThrottleWindow)
}

func TestRegisterCompletions(t *testing.T) {
	t.Parallel()

	cfg := logroute.NewConfig()

	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())

	require.NoError(t, cfg.RegisterCompletions(cmd))

	completionFn, ok := cmd.GetFlagCompletionFunc("log-level")
	require.True(t, ok)

	values, directive := completionFn(cmd, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.Equal(t, logroute.GetAllLevelStrings(), values)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `logger_level: debug
logger_color: false
max_message_lines: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := logroute.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Level)
	assert.False(t, cfg.Color)
	assert.Equal(t, 10, cfg.MaxMessageLines)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, logroute.DefaultMaxLineLength, cfg.MaxLineLength)
	assert.Equal(t, logroute.DefaultMaxWritesPerWindow, cfg.MaxWritesPerWindow)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := logroute.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger_level: [oops\n"), 0o644))

	_, err := logroute.LoadConfig(path)
	require.ErrorIs(t, err, logroute.ErrConfiguration)
}

func TestConfigNewRouterRejectsBadLevel(t *testing.T) {
	t.Parallel()

	cfg := logroute.NewConfig()
	cfg.Level = "shout"

	_, err := cfg.NewRouter()
	require.ErrorIs(t, err, logroute.ErrConfiguration)
}

func TestConfigSchema(t *testing.T) {
	t.Parallel()

	schema := logroute.ConfigSchema()

	assert.Equal(t, "object", schema.Type)
	assert.Len(t, schema.Properties, 12)

	for _, key := range []string{
		"logger_level",
		"logger_color",
		"max_message_length",
		"max_message_lines",
		"max_line_length",
		"max_log_handles_per_call",
		"colorize_timeout",
		"max_html_document_bytes",
		"max_html_title_length",
		"max_writes_per_window",
		"throttle_window",
		"plain_log_max_file_size_bytes",
	} {
		assert.Contains(t, schema.Properties, key)
	}

	require.NotNil(t, schema.AdditionalProperties)
}
