// Package htmlsafe hardens untrusted text for inclusion in streaming HTML
// log documents.
//
// It provides two independent lines of defense. [Escape] is the first:
// every piece of user-controlled text passes through control-character
// replacement and strict entity escaping before it is wrapped in the
// renderer's markup. [ValidateFragment] is the second: the fully rendered
// fragment is re-parsed with golang.org/x/net/html and checked against a
// fixed allowlist of tags and classes. The validator shares no code with
// the escaper, so an escaping bug cannot hide from it; any fragment it
// rejects must be blocked, not repaired.
package htmlsafe
