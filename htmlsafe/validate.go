package htmlsafe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrUnsafeFragment indicates a rendered HTML fragment that failed allowlist
// validation and must not be written.
var ErrUnsafeFragment = errors.New("unsafe html fragment")

// allowedTags are the only tags the row renderer emits.
var allowedTags = map[string]bool{
	"div":  true,
	"pre":  true,
	"span": true,
}

// allowedClasses are the only CSS classes the row renderer emits.
var allowedClasses = map[string]bool{
	"log-row":           true,
	"log-line-no":       true,
	"log-time":          true,
	"log-date":          true,
	"log-clock":         true,
	"log-nature":        true,
	"badge-info":        true,
	"badge-debug":       true,
	"badge-warning":     true,
	"badge-error":       true,
	"syn-base":          true,
	"syn-quote-mark":    true,
	"syn-quote-content": true,
	"syn-number":        true,
	"syn-punct":         true,
	"syn-lhs":           true,
}

// ValidateFragment checks a rendered log row against the structural
// allowlist: only div/pre/span tags, only the class attribute with known
// classes, a single div root, balanced tags, no comments, no self-closing
// tags, and no raw '<' or '>' in text content. It re-parses the fragment
// with an independent tokenizer rather than trusting the renderer.
func ValidateFragment(fragment string) error {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var stack []string

	sawRoot := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			err := z.Err()
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: parsing fragment: %w", ErrUnsafeFragment, err)
			}

			if !sawRoot {
				return fmt.Errorf("%w: fragment has no root tag", ErrUnsafeFragment)
			}

			if len(stack) > 0 {
				return fmt.Errorf("%w: unclosed tag <%s>", ErrUnsafeFragment, stack[len(stack)-1])
			}

			return nil

		case html.StartTagToken:
			tok := z.Token()

			if !allowedTags[tok.Data] {
				return fmt.Errorf("%w: disallowed tag <%s>", ErrUnsafeFragment, tok.Data)
			}

			if !sawRoot {
				if tok.Data != "div" {
					return fmt.Errorf("%w: fragment must be rooted at a <div>", ErrUnsafeFragment)
				}

				sawRoot = true
			}

			err := validateAttributes(tok)
			if err != nil {
				return err
			}

			stack = append(stack, tok.Data)

		case html.EndTagToken:
			tok := z.Token()

			if !allowedTags[tok.Data] {
				return fmt.Errorf("%w: disallowed closing tag </%s>", ErrUnsafeFragment, tok.Data)
			}

			if len(stack) == 0 {
				return fmt.Errorf("%w: unexpected closing tag </%s>", ErrUnsafeFragment, tok.Data)
			}

			expected := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if expected != tok.Data {
				return fmt.Errorf("%w: expected </%s> but got </%s>", ErrUnsafeFragment, expected, tok.Data)
			}

		case html.SelfClosingTagToken:
			tok := z.Token()

			return fmt.Errorf("%w: self-closing tag <%s/> is not allowed", ErrUnsafeFragment, tok.Data)

		case html.CommentToken:
			return fmt.Errorf("%w: comments are not allowed", ErrUnsafeFragment)

		case html.DoctypeToken:
			return fmt.Errorf("%w: doctype is not allowed", ErrUnsafeFragment)

		case html.TextToken:
			// Raw() exposes the source bytes: a literal '<' or '>' here
			// means the escaping stage was bypassed.
			if bytes.ContainsAny(z.Raw(), "<>") {
				return fmt.Errorf("%w: raw angle bracket in text content", ErrUnsafeFragment)
			}
		}
	}
}

func validateAttributes(tok html.Token) error {
	for _, attr := range tok.Attr {
		name := strings.ToLower(attr.Key)

		if strings.HasPrefix(name, "on") {
			return fmt.Errorf("%w: event handler attribute %q", ErrUnsafeFragment, attr.Key)
		}

		if name != "class" {
			return fmt.Errorf("%w: attribute %q is not allowed on <%s>", ErrUnsafeFragment, attr.Key, tok.Data)
		}

		if strings.Contains(strings.ToLower(attr.Val), "javascript:") {
			return fmt.Errorf("%w: javascript URI in attribute", ErrUnsafeFragment)
		}

		classes := strings.Fields(attr.Val)
		if len(classes) == 0 {
			return fmt.Errorf("%w: empty class attribute", ErrUnsafeFragment)
		}

		for _, class := range classes {
			if !allowedClasses[class] {
				return fmt.Errorf("%w: disallowed class %q", ErrUnsafeFragment, class)
			}
		}
	}

	return nil
}
