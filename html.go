package logroute

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"go.jacobcolvin.com/logroute/highlight"
	"go.jacobcolvin.com/logroute/htmlsafe"
	"go.jacobcolvin.com/logroute/rotate"
)

// HTMLConfig configures a streaming HTML file facility.
type HTMLConfig struct {
	// Path is the target HTML document.
	Path string
	// Title is the document title, limited by [Config.MaxHTMLTitleLength].
	Title string
	// Theme selects the dark or light color scheme. Empty defaults to dark.
	Theme Theme
	// AutoRefresh emits a meta refresh tag so a browser tab follows the log.
	AutoRefresh bool
	// AutoRefreshInterval is the refresh period; must be at least one second
	// when AutoRefresh is set.
	AutoRefreshInterval time.Duration
	// RotateOnStart rotates any existing document once at registration.
	RotateOnStart bool
	// RotationsToKeep is the number of rotated generations to preserve.
	RotationsToKeep int
}

const streamMarker = "<!-- LOGROUTE_STREAM_ENTRIES -->"

// The shell deliberately leaves article/main/body/html unclosed: those
// closing tags are optional in HTML5, which keeps the document append-only
// on disk yet renderable in a browser after every single append.
var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
{{- if .RefreshMeta }}
{{ .RefreshMeta }}
{{- end }}
<title>{{ .Title }}</title>
<style>{{ .Stylesheet }}</style>
</head>
<body class="{{ .ThemeClass }}">
<main>
<header><h1>{{ .Title }}</h1></header>
<article>
<div class="log-stream">
` + streamMarker + "\n"))

const documentStylesheet = `
body { margin: 0; padding: 0.35rem 0.65rem; font-family: Inter, system-ui, sans-serif; font-size: 16px; line-height: 1.5; color: var(--fg); background: var(--bg); }
body.theme-dark { --fg: #e2e8f0; --muted: #94a3b8; --bg: #0b1220; --card: #111827; --border: #1f2937; --accent: #60a5fa; --ok: #2dd4bf; --bad: #f87171; --code: #cbd5e1; --dim: #9ca3af; }
body.theme-light { --fg: #1f2937; --muted: #64748b; --bg: #f8fafc; --card: #ffffff; --border: #e2e8f0; --accent: #2563eb; --ok: #0f766e; --bad: #dc2626; --code: #334155; --dim: #6b7280; }
main { width: 100%; margin: 0; }
header { margin-bottom: 0.75rem; }
article { background: var(--card); border: 1px solid var(--border); border-radius: 0.25rem; padding: 0.45rem; }
.log-row { display: grid; grid-template-columns: 7ch 20ch 2ch 1fr; column-gap: 0.75rem; align-items: start; padding: 0.2rem 0.25rem; border-bottom: 1px solid var(--border); }
.log-row:hover { background: color-mix(in srgb, var(--accent) 8%, transparent); }
.log-line-no { color: var(--muted); text-align: right; }
.log-time { color: var(--dim); }
.log-date { color: var(--accent); }
.log-clock { color: var(--ok); }
.log-nature { color: var(--dim); }
.badge-info { color: var(--ok); }
.badge-debug { color: var(--dim); }
.badge-warning { color: var(--accent); }
.badge-error { color: var(--bad); }
pre { margin: 0; white-space: pre-wrap; font-family: ui-monospace, Menlo, Consolas, monospace; color: var(--code); }
.syn-base { color: var(--code); }
.syn-quote-mark { color: var(--ok); }
.syn-quote-content { color: var(--accent); }
.syn-number { color: var(--ok); }
.syn-punct { color: var(--ok); }
.syn-lhs { color: var(--bad); }
`

// spanClass maps highlight token kinds to the renderer's CSS classes. It is
// a variable so tests can tamper with the renderer and prove the validator
// blocks the result.
var spanClass = func(kind highlight.Kind) string {
	switch kind {
	case highlight.Key:
		return "syn-lhs"
	case highlight.Quote:
		return "syn-quote-mark"
	case highlight.String:
		return "syn-quote-content"
	case highlight.Number:
		return "syn-number"
	case highlight.Punct:
		return "syn-punct"
	default:
		return "syn-base"
	}
}

// htmlFacility renders records as highlighted, escaped HTML rows, validates
// each rendered row against the allowlist, and appends admitted rows to a
// streaming document.
type htmlFacility struct {
	mu               sync.Mutex
	target           rotate.Target
	title            string
	themeClass       string
	refreshMeta      string
	colorizeTimeout  time.Duration
	maxDocumentBytes int64
	lineNo           int
	degraded         bool
}

func newHTMLFacility(cfg HTMLConfig, colorizeTimeout time.Duration, maxDocumentBytes int64) (*htmlFacility, error) {
	if cfg.RotationsToKeep < 0 {
		return nil, fmt.Errorf("%w: rotations to keep must be >= 0", ErrConfiguration)
	}

	theme := cfg.Theme
	if theme == "" {
		theme = ThemeDark
	}

	if theme != ThemeDark && theme != ThemeLight {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, cfg.Theme)
	}

	refreshMeta := ""

	if cfg.AutoRefresh {
		if cfg.AutoRefreshInterval < time.Second {
			return nil, fmt.Errorf("%w: auto refresh interval must be at least one second", ErrConfiguration)
		}

		refreshMeta = fmt.Sprintf(`<meta http-equiv="refresh" content="%d" />`,
			int(cfg.AutoRefreshInterval/time.Second))
	}

	target := rotate.Target{Path: cfg.Path, Keep: cfg.RotationsToKeep}

	err := rotate.Prepare(cfg.Path)
	if err != nil {
		return nil, err
	}

	if cfg.RotateOnStart {
		err = target.Rotate()
		if err != nil {
			return nil, err
		}
	}

	f := &htmlFacility{
		target:           target,
		title:            htmlsafe.Escape(cfg.Title),
		themeClass:       "theme-" + string(theme),
		refreshMeta:      refreshMeta,
		colorizeTimeout:  colorizeTimeout,
		maxDocumentBytes: maxDocumentBytes,
	}

	err = f.ensureDocument()
	if err != nil {
		return nil, err
	}

	f.lineNo = f.countExistingRows()

	return f, nil
}

// ensureDocument writes the document skeleton when the target is missing or
// empty, leaving an existing document untouched.
func (f *htmlFacility) ensureDocument() error {
	if currentSize(f.target.Path) > 0 {
		return nil
	}

	err := rotate.CheckTarget(f.target.Path)
	if err != nil {
		return err
	}

	var sb strings.Builder

	err = documentTemplate.Execute(&sb, map[string]string{
		"Title":       f.title,
		"Stylesheet":  documentStylesheet,
		"ThemeClass":  f.themeClass,
		"RefreshMeta": f.refreshMeta,
	})
	if err != nil {
		return fmt.Errorf("rendering document skeleton: %w", err)
	}

	err = os.WriteFile(f.target.Path, []byte(sb.String()), 0o644)
	if err != nil {
		return fmt.Errorf("writing document skeleton %q: %w", f.target.Path, err)
	}

	return nil
}

// countExistingRows derives the next line number from a document left over
// from a previous run.
func (f *htmlFacility) countExistingRows() int {
	content, err := os.ReadFile(f.target.Path)
	if err != nil {
		return 0
	}

	return strings.Count(string(content), `<div class="log-row">`)
}

func (f *htmlFacility) write(rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.degraded {
		return nil
	}

	err := rotate.CheckTarget(f.target.Path)
	if err != nil {
		f.degraded = true

		return err
	}

	err = f.ensureDocument()
	if err != nil {
		return err
	}

	next := f.lineNo + 1
	row := f.renderRow(rec, next)

	err = htmlsafe.ValidateFragment(row)
	if err != nil {
		// Fail closed: the row is blocked, the document stays untouched.
		return err
	}

	if currentSize(f.target.Path)+int64(len(row)) > f.maxDocumentBytes {
		err = f.target.Rotate()
		if err != nil {
			f.degraded = true

			return err
		}

		next = 1

		err = f.ensureDocument()
		if err != nil {
			return err
		}

		// The fresh document restarts numbering, so the row must be
		// re-rendered and re-checked before it touches disk.
		row = f.renderRow(rec, next)

		err = htmlsafe.ValidateFragment(row)
		if err != nil {
			return err
		}
	}

	err = appendString(f.target.Path, row)
	if err != nil {
		return err
	}

	f.lineNo = next

	return nil
}

// renderRow builds one log row. All user-controlled text is escaped; only
// the structural markup emitted here is trusted, and even that is re-checked
// by the validator before the row touches disk.
func (f *htmlFacility) renderRow(rec Record, lineNo int) string {
	timestamp := rec.Time.Format("2006-01-02 15:04:05")
	date, clock, _ := strings.Cut(timestamp, " ")

	var sb strings.Builder

	sb.WriteString("<div class=\"log-row\">\n")
	fmt.Fprintf(&sb, "  <div class=\"log-line-no\"><pre>%s</pre></div>\n",
		htmlsafe.Escape(fmt.Sprintf("%06d", lineNo)))
	fmt.Fprintf(&sb, "  <div class=\"log-time\"><pre><span class=\"log-date\">%s</span> <span class=\"log-clock\">%s</span></pre></div>\n",
		htmlsafe.Escape(date), htmlsafe.Escape(clock))
	fmt.Fprintf(&sb, "  <div class=\"%s\"><pre>%s</pre></div>\n",
		htmlBadgeClass(rec.Level), htmlsafe.Escape(htmlBadgeIcon(rec.Level)))
	fmt.Fprintf(&sb, "  <div><pre>%s</pre></div>\n", f.renderMessage(rec))
	sb.WriteString("</div>\n")

	return sb.String()
}

// renderMessage highlights and escapes the message body, degrading to a
// single escaped plain span per line when the highlight budget runs out.
func (f *htmlFacility) renderMessage(rec Record) string {
	var sb strings.Builder

	if rec.Nature != "" {
		fmt.Fprintf(&sb, "<span class=\"log-nature\">%s</span> ",
			htmlsafe.Escape("["+rec.Nature+"]"))
	}

	lines := strings.Split(htmlsafe.Sanitize(rec.Message), "\n")

	for i, line := range lines {
		if i > 0 {
			sb.WriteString("\n\t")
		}

		spans, err := highlight.Line(line, time.Now().Add(f.colorizeTimeout))
		if err != nil {
			fmt.Fprintf(&sb, "<span class=\"syn-base\">%s</span>", htmlsafe.Escape(line))

			continue
		}

		sb.WriteString(highlight.Apply(line, spans, func(kind highlight.Kind, text string) string {
			return fmt.Sprintf("<span class=%q>%s</span>", spanClass(kind), htmlsafe.Escape(text))
		}))
	}

	return sb.String()
}

func htmlBadgeIcon(level Level) string {
	switch level {
	case LevelError:
		return "⛔"
	case LevelWarning:
		return "⚠️"
	case LevelDebug:
		return "🐞"
	default:
		return "ℹ️"
	}
}

func htmlBadgeClass(level Level) string {
	switch level {
	case LevelError:
		return "badge-error"
	case LevelWarning:
		return "badge-warning"
	case LevelDebug:
		return "badge-debug"
	default:
		return "badge-info"
	}
}
