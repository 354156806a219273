package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"nulint/internal/diag"
	"nulint/internal/source"
)

// Position is an LSP position: zero-based line, UTF-16 character offset.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range is an LSP range, end exclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// CodeDescription links a diagnostic code to its documentation.
type CodeDescription struct {
	Href string `json:"href"`
}

// RelatedInformation carries secondary labels and help text.
type RelatedInformation struct {
	Location Location `json:"location"`
	Message  string   `json:"message"`
}

// Location pairs a file URI with a range.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// TextEdit is one replacement in LSP shape.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// FixData rides in the diagnostic's data field so a code action can be
// rebuilt without re-linting.
type FixData struct {
	Title string     `json:"title"`
	Edits []TextEdit `json:"edits"`
}

// Diagnostic follows the LSP wire shape.
type Diagnostic struct {
	Range              Range                `json:"range"`
	Severity           int                  `json:"severity"`
	Code               string               `json:"code"`
	CodeDescription    *CodeDescription     `json:"codeDescription,omitempty"`
	Source             string               `json:"source"`
	Message            string               `json:"message"`
	Tags               []int                `json:"tags,omitempty"`
	RelatedInformation []RelatedInformation `json:"relatedInformation,omitempty"`
	Data               *FixData             `json:"data,omitempty"`
}

// JSONSummary totals the run.
type JSONSummary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Hints    int `json:"hints"`
	Files    int `json:"files"`
}

// JSONOutput is the full document: diagnostics keyed by file URI plus a
// summary.
type JSONOutput struct {
	Diagnostics map[string][]Diagnostic `json:"diagnostics"`
	Summary     JSONSummary             `json:"summary"`
}

// DiagnosticSource is the source field on every diagnostic.
const DiagnosticSource = "nu-lint"

// JSON writes the violations as indented JSON.
func JSON(w io.Writer, violations []diag.Violation, fs *source.FileSet, opts JSONOpts) error {
	out := BuildJSON(violations, fs, opts)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// BuildJSON assembles the output document without serializing it.
func BuildJSON(violations []diag.Violation, fs *source.FileSet, opts JSONOpts) JSONOutput {
	out := JSONOutput{Diagnostics: make(map[string][]Diagnostic)}
	for _, v := range violations {
		file := fs.Get(v.Primary.Span.File)
		if file == nil {
			continue
		}
		uri := FileURI(file.Path)
		out.Diagnostics[uri] = append(out.Diagnostics[uri], ToDiagnostic(&v, file))

		switch v.Level {
		case diag.LevelError:
			out.Summary.Errors++
		case diag.LevelWarning:
			out.Summary.Warnings++
		default:
			out.Summary.Hints++
		}
		out.Summary.Total++
	}
	out.Summary.Files = len(out.Diagnostics)
	return out
}

// ToDiagnostic converts one violation against its file.
func ToDiagnostic(v *diag.Violation, file *source.File) Diagnostic {
	d := Diagnostic{
		Range:    rangeFor(file, v.Primary.Span),
		Severity: v.Level.LSPSeverity(),
		Code:     v.RuleID,
		Source:   DiagnosticSource,
		Message:  v.Message,
	}
	if v.URL != "" {
		d.CodeDescription = &CodeDescription{Href: v.URL}
	}
	for _, tag := range v.Tags {
		d.Tags = append(d.Tags, int(tag))
	}

	uri := FileURI(file.Path)
	for _, extra := range v.Extra {
		d.RelatedInformation = append(d.RelatedInformation, RelatedInformation{
			Location: Location{URI: uri, Range: rangeFor(file, extra.Span)},
			Message:  extra.Message,
		})
	}
	if v.Help != "" {
		d.RelatedInformation = append(d.RelatedInformation, RelatedInformation{
			Location: Location{URI: uri, Range: d.Range},
			Message:  v.Help,
		})
	}

	if v.Fix != nil {
		data := &FixData{Title: v.Fix.Explanation}
		for _, r := range v.Fix.Replacements {
			data.Edits = append(data.Edits, TextEdit{
				Range:   rangeFor(file, r.Span),
				NewText: r.NewText,
			})
		}
		sort.Slice(data.Edits, func(i, j int) bool {
			return lessPosition(data.Edits[i].Range.Start, data.Edits[j].Range.Start)
		})
		d.Data = data
	}
	return d
}

func lessPosition(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

func rangeFor(file *source.File, span source.Span) Range {
	r := file.RangeFor(span)
	return Range{
		Start: Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   Position{Line: r.End.Line, Character: r.End.Character},
	}
}

// FileURI builds a file:// URI from a path. Relative paths are made
// absolute first; virtual names pass through with the scheme attached.
func FileURI(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}
