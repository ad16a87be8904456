package htmlsafe

import (
	"html"
	"strings"
)

// bidiControls are Unicode directionality controls that can visually reorder
// rendered log text.
var bidiControls = map[rune]bool{
	0x061C: true,
	0x200E: true,
	0x200F: true,
	0x202A: true,
	0x202B: true,
	0x202C: true,
	0x202D: true,
	0x202E: true,
	0x2066: true,
	0x2067: true,
	0x2068: true,
	0x2069: true,
}

// Sanitize replaces C0 and C1 control characters (except newline and tab)
// and Unicode bidi controls with U+FFFD.
func Sanitize(text string) string {
	var sb strings.Builder

	sb.Grow(len(text))

	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			sb.WriteRune(r)
		case r <= 0x1F || (r >= 0x7F && r <= 0x9F) || bidiControls[r]:
			sb.WriteRune('�')
		default:
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

// Escape sanitizes text and escapes every character HTML treats as markup:
// & < > " and '.
func Escape(text string) string {
	return html.EscapeString(Sanitize(text))
}
