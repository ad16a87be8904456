package htmlsafe_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/logroute/htmlsafe"
)

func TestValidateFragment(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		fragment    string
		expectError bool
	}{
		"minimal row": {
			fragment: `<div class="log-row"><pre>ok</pre></div>`,
		},
		"nested spans": {
			fragment: `<div class="log-row"><pre><span class="syn-lhs">count</span><span class="syn-number">42</span></pre></div>`,
		},
		"escaped markup in text": {
			fragment: `<div class="log-row"><pre>&lt;script&gt; and a &gt; b</pre></div>`,
		},
		"multiple classes": {
			fragment: `<div class="log-row log-time"><pre>x</pre></div>`,
		},
		"empty fragment": {
			fragment:    "",
			expectError: true,
		},
		"no root tag": {
			fragment:    "just text",
			expectError: true,
		},
		"root must be div": {
			fragment:    `<span class="syn-base">x</span>`,
			expectError: true,
		},
		"script tag": {
			fragment:    `<div class="log-row"><script>alert(1)</script></div>`,
			expectError: true,
		},
		"disallowed tag": {
			fragment:    `<div class="log-row"><a>x</a></div>`,
			expectError: true,
		},
		"disallowed class": {
			fragment:    `<div class="evil"><pre>x</pre></div>`,
			expectError: true,
		},
		"empty class": {
			fragment:    `<div class=""><pre>x</pre></div>`,
			expectError: true,
		},
		"event handler attribute": {
			fragment:    `<div class="log-row" onclick="alert(1)"><pre>x</pre></div>`,
			expectError: true,
		},
		"non-class attribute": {
			fragment:    `<div id="row"><pre>x</pre></div>`,
			expectError: true,
		},
		"self-closing tag": {
			fragment:    `<div class="log-row"/>`,
			expectError: true,
		},
		"comment": {
			fragment:    `<div class="log-row"><!-- sneaky --></div>`,
			expectError: true,
		},
		"doctype": {
			fragment:    `<!DOCTYPE html><div class="log-row"></div>`,
			expectError: true,
		},
		"unclosed tag": {
			fragment:    `<div class="log-row"><pre>x`,
			expectError: true,
		},
		"mismatched closing tag": {
			fragment:    `<div class="log-row"><pre>x</span></div>`,
			expectError: true,
		},
		"closing tag without opener": {
			fragment:    `<div class="log-row"></div></div>`,
			expectError: true,
		},
		"raw angle bracket in text": {
			fragment:    `<div class="log-row"><pre>a > b</pre></div>`,
			expectError: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := htmlsafe.ValidateFragment(tc.fragment)
			if tc.expectError {
				require.ErrorIs(t, err, htmlsafe.ErrUnsafeFragment)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
