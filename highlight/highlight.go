package highlight

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// ErrDeadline indicates the tokenization time budget was exhausted.
var ErrDeadline = errors.New("highlight: time budget exceeded")

// Kind classifies a span of characters.
type Kind int

const (
	// Text is unclassified plain text.
	Text Kind = iota
	// Key is an identifier on the left-hand side of '='.
	Key
	// Quote is a quote mark delimiting a string.
	Quote
	// String is the content between quote marks.
	String
	// Number is a digit run.
	Number
	// Punct is structural punctuation.
	Punct
)

// Span is a half-open range of runes [Start, End) sharing one [Kind].
type Span struct {
	Start int
	End   int
	Kind  Kind
}

const punctuation = ".,+-=<>:;[]{}"

// deadline checks are amortized over this many iterations to keep the
// tokenizer cheap on the happy path.
const checkEvery = 64

type budget struct {
	deadline time.Time
	ticks    int
}

func (b *budget) spent() bool {
	b.ticks++
	if b.ticks%checkEvery != 0 {
		return false
	}

	return !b.deadline.IsZero() && !time.Now().Before(b.deadline)
}

// Line tokenizes one line into spans covering every rune, merging contiguous
// runs of the same kind. Offsets are rune offsets. A zero deadline disables
// the time budget.
func Line(line string, deadline time.Time) ([]Span, error) {
	runes := []rune(line)
	if len(runes) == 0 {
		return nil, nil
	}

	b := &budget{deadline: deadline}

	quoted, marks, err := quoteSpans(runes, b)
	if err != nil {
		return nil, err
	}

	keys, err := keySpans(runes, b)
	if err != nil {
		return nil, err
	}

	spans := make([]Span, 0, 8)

	for i, r := range runes {
		if b.spent() {
			return nil, ErrDeadline
		}

		kind := classify(i, r, quoted, marks, keys)
		if n := len(spans); n > 0 && spans[n-1].Kind == kind {
			spans[n-1].End = i + 1

			continue
		}

		spans = append(spans, Span{Start: i, End: i + 1, Kind: kind})
	}

	return spans, nil
}

// Apply renders line by passing each span's text through render and
// concatenating the results. Offsets in spans must come from [Line] over the
// same line.
func Apply(line string, spans []Span, render func(Kind, string) string) string {
	runes := []rune(line)

	var sb strings.Builder

	for _, span := range spans {
		sb.WriteString(render(span.Kind, string(runes[span.Start:span.End])))
	}

	return sb.String()
}

func classify(i int, r rune, quoted []Span, marks map[int]bool, keys []Span) Kind {
	switch {
	case marks[i]:
		return Quote
	case within(i, quoted):
		return String
	case within(i, keys):
		return Key
	case unicode.IsDigit(r):
		return Number
	case strings.ContainsRune(punctuation, r):
		return Punct
	default:
		return Text
	}
}

func within(i int, spans []Span) bool {
	for _, s := range spans {
		if s.Start <= i && i < s.End {
			return true
		}
	}

	return false
}

// quoteSpans finds single- and double-quoted content and the positions of
// the delimiting quote marks. A backslash escapes the closing quote.
func quoteSpans(runes []rune, b *budget) ([]Span, map[int]bool, error) {
	var spans []Span

	marks := make(map[int]bool)

	for i := 0; i < len(runes); {
		if b.spent() {
			return nil, nil, ErrDeadline
		}

		quote := runes[i]
		if quote != '"' && quote != '\'' {
			i++

			continue
		}

		closed := false

		for j := i + 1; j < len(runes); j++ {
			if b.spent() {
				return nil, nil, ErrDeadline
			}

			if runes[j] == quote && runes[j-1] != '\\' {
				spans = append(spans, Span{Start: i + 1, End: j, Kind: String})
				marks[i] = true
				marks[j] = true
				i = j + 1
				closed = true

				break
			}
		}

		if !closed {
			i++
		}
	}

	return spans, marks, nil
}

// keySpans finds identifiers immediately preceding '=', optionally separated
// by whitespace.
func keySpans(runes []rune, b *budget) ([]Span, error) {
	var spans []Span

	for i := 0; i < len(runes); {
		if b.spent() {
			return nil, ErrDeadline
		}

		r := runes[i]
		if !unicode.IsLetter(r) && r != '_' {
			i++

			continue
		}

		start := i
		for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
			i++
		}

		end := i

		look := i
		for look < len(runes) && unicode.IsSpace(runes[look]) {
			look++
		}

		if look < len(runes) && runes[look] == '=' {
			spans = append(spans, Span{Start: start, End: end, Kind: Key})
		}
	}

	return spans, nil
}
