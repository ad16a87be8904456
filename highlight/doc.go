// Package highlight tokenizes log message lines into spans for best-effort
// syntax highlighting of key=value style output.
//
// [Line] classifies each character of a line as one of [Key], [Quote],
// [String], [Number], [Punct], or [Text] and merges contiguous runs into
// [Span] values. Tokenization is bounded by an explicit deadline: when the
// budget is exhausted [Line] returns [ErrDeadline] and the caller is expected
// to fall back to rendering the whole line as plain text. It never consumes
// unbounded time and never fails for any other reason.
package highlight
