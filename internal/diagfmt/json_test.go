package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"nulint/internal/diag"
	"nulint/internal/source"
)

func TestBuildJSONShape(t *testing.T) {
	violations, fs := fixtureViolations(t)
	out := BuildJSON(violations, fs, JSONOpts{})

	if out.Summary.Total != 2 || out.Summary.Warnings != 2 || out.Summary.Files != 1 {
		t.Errorf("summary = %+v", out.Summary)
	}
	if len(out.Diagnostics) != 1 {
		t.Fatalf("uris = %d, want 1", len(out.Diagnostics))
	}
	var uri string
	for k := range out.Diagnostics {
		uri = k
	}
	if !strings.HasPrefix(uri, "file://") || !strings.HasSuffix(uri, "script.nu") {
		t.Errorf("uri = %q", uri)
	}

	ds := out.Diagnostics[uri]
	if len(ds) != 2 {
		t.Fatalf("diagnostics = %d, want 2", len(ds))
	}

	first := ds[0]
	if first.Code != "snake_case_variables" || first.Source != DiagnosticSource {
		t.Errorf("first = %+v", first)
	}
	if first.Severity != 2 {
		t.Errorf("warning severity = %d, want 2", first.Severity)
	}
	if first.Range.Start.Line != 0 || first.Range.Start.Character != 4 {
		t.Errorf("range start = %+v", first.Range.Start)
	}
	if len(first.RelatedInformation) != 1 {
		t.Errorf("help must become related information: %+v", first.RelatedInformation)
	}

	second := ds[1]
	if second.Data == nil {
		t.Fatal("fix missing from data field")
	}
	if second.Data.Title != "Replace mut with let" || len(second.Data.Edits) != 1 {
		t.Errorf("data = %+v", second.Data)
	}
	if second.Data.Edits[0].NewText != "let" {
		t.Errorf("edit = %+v", second.Data.Edits[0])
	}
}

func TestJSONRoundTrips(t *testing.T) {
	violations, fs := fixtureViolations(t)
	var sb strings.Builder
	if err := JSON(&sb, violations, fs, JSONOpts{}); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Diagnostics map[string][]json.RawMessage `json:"diagnostics"`
		Summary     JSONSummary                  `json:"summary"`
	}
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Summary.Total != 2 {
		t.Errorf("summary total = %d", decoded.Summary.Total)
	}
}

func TestJSONSeverityMapping(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("sev.nu", []byte("abc\n"))
	file := fs.Get(id)
	span := source.Span{File: file.ID, Start: 0, End: 1}

	cases := []struct {
		level diag.LintLevel
		want  int
	}{
		{diag.LevelError, 1},
		{diag.LevelWarning, 2},
		{diag.LevelHint, 4},
	}
	for _, c := range cases {
		v := diag.New("r", c.level, span, "m")
		d := ToDiagnostic(&v, file)
		if d.Severity != c.want {
			t.Errorf("severity(%v) = %d, want %d", c.level, d.Severity, c.want)
		}
	}
}

func TestJSONTags(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("tags.nu", []byte("abc\n"))
	file := fs.Get(id)
	v := diag.New("r", diag.LevelWarning, source.Span{File: file.ID, Start: 0, End: 1}, "m")
	v.Tags = []diag.Tag{diag.TagUnnecessary}
	d := ToDiagnostic(&v, file)
	if len(d.Tags) != 1 || d.Tags[0] != 1 {
		t.Errorf("tags = %v, want [1]", d.Tags)
	}
}

func TestFileURI(t *testing.T) {
	uri := FileURI("/tmp/x.nu")
	if uri != "file:///tmp/x.nu" {
		t.Errorf("uri = %q", uri)
	}
	if got := FileURI("file:///already"); got != "file:///already" {
		t.Errorf("existing uri rewritten to %q", got)
	}
}
