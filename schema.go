package logroute

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// ConfigSchema returns a JSON Schema describing the YAML configuration file
// accepted by [LoadConfig].
func ConfigSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Schema:      "http://json-schema.org/draft-07/schema#",
		Title:       "logroute configuration",
		Type:        "object",
		Description: "Limits and console settings for the logroute router.",
		Properties: map[string]*jsonschema.Schema{
			"logger_level": {
				Type:        "string",
				Description: "Minimum level to emit.",
				Enum:        []any{"debug", "info", "warning", "error"},
				Default:     defaultValue("info"),
			},
			"logger_color": {
				Type:        "boolean",
				Description: "Enable ANSI color on console output.",
				Default:     defaultValue(true),
			},
			"max_message_length": positiveInteger(
				"Maximum message length in chars; longer messages are clipped with a visible marker.",
				DefaultMaxMessageLength),
			"max_message_lines": positiveInteger(
				"Maximum lines per message; excess lines are dropped with a visible marker.",
				DefaultMaxMessageLines),
			"max_line_length": positiveInteger(
				"Maximum length per message line in chars.",
				DefaultMaxLineLength),
			"max_log_handles_per_call": positiveInteger(
				"Maximum explicit facility handles per log call.",
				DefaultMaxLogHandlesPerCall),
			"colorize_timeout": {
				Type:        "string",
				Description: "Time budget for syntax highlighting, as a Go duration (e.g. 15ms).",
				Default:     defaultValue("15ms"),
			},
			"max_html_document_bytes": positiveInteger(
				"HTML document size triggering forced rotation.",
				DefaultMaxHTMLDocumentBytes),
			"max_html_title_length": positiveInteger(
				"Maximum HTML document title length in chars.",
				DefaultMaxHTMLTitleLength),
			"max_writes_per_window": positiveInteger(
				"Maximum admitted writes per handle per throttle window; excess writes are dropped.",
				DefaultMaxWritesPerWindow),
			"throttle_window": {
				Type:        "string",
				Description: "Throttle window length, as a Go duration (e.g. 1s).",
				Default:     defaultValue("1s"),
			},
			"plain_log_max_file_size_bytes": positiveInteger(
				"Plain log file size triggering rotation.",
				DefaultPlainMaxFileSize),
		},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

func positiveInteger(description string, defaultVal int64) *jsonschema.Schema {
	minimum := float64(1)

	return &jsonschema.Schema{
		Type:        "integer",
		Description: description,
		Minimum:     &minimum,
		Default:     defaultValue(defaultVal),
	}
}

// defaultValue converts a Go value to a raw JSON default, dropping it on
// marshal failure.
func defaultValue(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	return b
}
