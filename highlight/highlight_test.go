package highlight_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/logroute/highlight"
)

var kindNames = map[highlight.Kind]string{
	highlight.Text:   "text",
	highlight.Key:    "key",
	highlight.Quote:  "quote",
	highlight.String: "string",
	highlight.Number: "number",
	highlight.Punct:  "punct",
}

// renderTagged makes span boundaries visible: each span becomes kind(text).
func renderTagged(line string, spans []highlight.Span) string {
	return highlight.Apply(line, spans, func(kind highlight.Kind, text string) string {
		return fmt.Sprintf("%s(%s)", kindNames[kind], text)
	})
}

func TestLine(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    string
		expected string
	}{
		"key value pair": {
			input:    "count=42",
			expected: "key(count)punct(=)number(42)",
		},
		"key with spaces before equals": {
			input:    "count = 42",
			expected: "key(count)text( )punct(=)text( )number(42)",
		},
		"double quoted string": {
			input:    `say "hi"`,
			expected: `text(say )quote(")string(hi)quote(")`,
		},
		"single quoted string": {
			input:    "mode 'fast'",
			expected: "text(mode )quote(')string(fast)quote(')",
		},
		"unterminated quote stays text": {
			input:    `oops "broken`,
			expected: `text(oops "broken)`,
		},
		"punctuation run": {
			input:    "a[]{}b",
			expected: "text(a)punct([]{})text(b)",
		},
		"digits inside quotes are string": {
			input:    `port="8080"`,
			expected: `key(port)punct(=)quote(")string(8080)quote(")`,
		},
		"plain text": {
			input:    "hello world",
			expected: "text(hello world)",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			spans, err := highlight.Line(tc.input, time.Time{})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, renderTagged(tc.input, spans))
		})
	}
}

func TestLineCoversEveryRune(t *testing.T) {
	t.Parallel()

	input := `worker=3 said "done" in 1.5s [ok]`

	spans, err := highlight.Line(input, time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, spans)

	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len([]rune(input)), spans[len(spans)-1].End)

	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i-1].End, spans[i].Start)
	}
}

func TestLineEmpty(t *testing.T) {
	t.Parallel()

	spans, err := highlight.Line("", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestLineDeadlineExceeded(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("a=1 ", 50_000)

	_, err := highlight.Line(input, time.Now().Add(-time.Second))
	require.ErrorIs(t, err, highlight.ErrDeadline)
}

func TestLineZeroDeadlineDisablesBudget(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("a=1 ", 50_000)

	_, err := highlight.Line(input, time.Time{})
	require.NoError(t, err)
}

func TestApplyPlainRender(t *testing.T) {
	t.Parallel()

	input := "count=42"

	spans, err := highlight.Line(input, time.Time{})
	require.NoError(t, err)

	out := highlight.Apply(input, spans, func(_ highlight.Kind, text string) string {
		return text
	})
	assert.Equal(t, input, out)
}
