package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"nulint/internal/diag"
	"nulint/internal/fix"
	"nulint/internal/source"
)

const separatorWidth = 60

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	removeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	addStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Text renders the violations as annotated snippets. The caller sorts the
// list; a summary line leads, a horizontal rule separates violations, and
// the last violation carries no trailing rule.
func Text(w io.Writer, violations []diag.Violation, fs *source.FileSet, opts TextOpts) {
	fmt.Fprintln(w, Summary(violations))
	if len(violations) == 0 {
		return
	}
	fmt.Fprintln(w)

	sep := strings.Repeat("-", separatorWidth)
	for i, v := range violations {
		writeViolation(w, &v, fs, opts)
		if i < len(violations)-1 {
			fmt.Fprintln(w, maybeStyle(dimStyle, sep, opts.Color))
		}
	}
}

// Summary builds the "Found N problems" line.
func Summary(violations []diag.Violation) string {
	if len(violations) == 0 {
		return "No problems found"
	}
	var errors, warnings, hints int
	for _, v := range violations {
		switch v.Level {
		case diag.LevelError:
			errors++
		case diag.LevelWarning:
			warnings++
		default:
			hints++
		}
	}
	noun := "problems"
	if len(violations) == 1 {
		noun = "problem"
	}
	return fmt.Sprintf("Found %d %s (%d errors, %d warnings, %d hints)",
		len(violations), noun, errors, warnings, hints)
}

func writeViolation(w io.Writer, v *diag.Violation, fs *source.FileSet, opts TextOpts) {
	file := fs.Get(v.Primary.Span.File)
	if file == nil {
		fmt.Fprintf(w, "%s %s: %s\n", levelTag(v.Level, opts.Color), v.RuleID, v.Message)
		return
	}
	start, _ := fs.Resolve(v.Primary.Span)
	path := file.FormatPath(opts.PathMode.key(), fs.BaseDir())

	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		path, start.Line, start.Col, levelTag(v.Level, opts.Color), v.RuleID, v.Message)

	writeUnderline(w, file, v.Primary.Span, v.Primary.Message, opts)
	for _, extra := range v.Extra {
		writeUnderline(w, file, extra.Span, extra.Message, opts)
	}
	writeHelp(w, v, file, opts)
}

// writeUnderline prints the offending line with a caret run under the
// span, column-aligned by display width.
func writeUnderline(w io.Writer, file *source.File, span source.Span, label string, opts TextOpts) {
	line := file.LineOf(span.Start)
	text := file.Line(line)
	lineStart := file.LineStart(line)

	prefix := sliceLine(text, 0, span.Start-lineStart)
	marked := sliceLine(text, span.Start-lineStart, spanEndInLine(span, lineStart, text))

	pad := runewidth.StringWidth(prefix)
	carets := runewidth.StringWidth(marked)
	if carets < 1 {
		carets = 1
	}

	gutter := fmt.Sprintf("%4d | ", line+1)
	fmt.Fprintf(w, "%s%s\n", gutter, text)

	underline := strings.Repeat("^", carets)
	if label != "" {
		underline += " " + label
	}
	fmt.Fprintf(w, "%s%s%s\n",
		strings.Repeat(" ", len(gutter)),
		strings.Repeat(" ", pad),
		maybeStyle(warningStyle, underline, opts.Color))
}

func spanEndInLine(span source.Span, lineStart uint32, text string) uint32 {
	end := span.End - lineStart
	if end > uint32(len(text)) {
		end = uint32(len(text))
	}
	return end
}

func sliceLine(text string, from, to uint32) string {
	if from > uint32(len(text)) {
		return ""
	}
	if to > uint32(len(text)) {
		to = uint32(len(text))
	}
	if from >= to {
		return ""
	}
	return text[from:to]
}

// writeHelp appends the help block: help text, the fix preview as an
// inline diff, and the documentation link.
func writeHelp(w io.Writer, v *diag.Violation, file *source.File, opts TextOpts) {
	long, url := "", v.URL
	if opts.Describe != nil {
		var docURL string
		long, docURL = opts.Describe(v.RuleID)
		if url == "" {
			url = docURL
		}
	}

	if v.Help != "" {
		fmt.Fprintf(w, "  = help: %s\n", v.Help)
	}
	if long != "" {
		fmt.Fprintf(w, "  = note: %s\n", long)
	}
	if v.Fix != nil {
		writeFixPreview(w, v, file, opts)
	}
	if url != "" {
		fmt.Fprintf(w, "  = docs: %s\n", link(url, opts.Color))
	}
}

func writeFixPreview(w io.Writer, v *diag.Violation, file *source.File, opts TextOpts) {
	edits := fix.Collect([]diag.Violation{*v})
	fixed, err := fix.Apply(file.Content, edits)
	if err != nil {
		return
	}
	removed, added := fix.InlineDiff(file.Content, fixed)
	if len(removed) == 0 && len(added) == 0 {
		return
	}
	fmt.Fprintf(w, "  = fix: %s\n", v.Fix.Explanation)
	for _, line := range removed {
		fmt.Fprintf(w, "    %s\n", maybeStyle(removeStyle, "- "+line, opts.Color))
	}
	for _, line := range added {
		fmt.Fprintf(w, "    %s\n", maybeStyle(addStyle, "+ "+line, opts.Color))
	}
}

func levelTag(level diag.LintLevel, color bool) string {
	switch level {
	case diag.LevelError:
		return maybeStyle(errorStyle, "ERROR", color)
	case diag.LevelWarning:
		return maybeStyle(warningStyle, "WARNING", color)
	default:
		return maybeStyle(hintStyle, "HINT", color)
	}
}

func maybeStyle(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// link wraps the URL in an OSC 8 hyperlink when styling is on.
func link(url string, color bool) string {
	if !color {
		return url
	}
	return "\x1b]8;;" + url + "\x1b\\" + url + "\x1b]8;;\x1b\\"
}
