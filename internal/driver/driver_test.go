package driver

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"nulint/internal/rules"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCollectFilesWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.nu", "ls\n")
	b := writeFile(t, dir, "sub/b.nu", "ls\n")
	writeFile(t, dir, "sub/skip.txt", "not a script\n")

	files, errs := CollectFiles([]string{dir})
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if !reflect.DeepEqual(files, []string{a, b}) {
		t.Errorf("files = %v", files)
	}
}

func TestCollectFilesTakesExplicitFilesAsIs(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "script.txt", "ls\n")

	files, errs := CollectFiles([]string{txt})
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(files) != 1 || files[0] != txt {
		t.Errorf("files = %v", files)
	}
}

func TestCollectFilesReportsMissingPath(t *testing.T) {
	files, errs := CollectFiles([]string{"/no/such/path.nu"})
	if len(files) != 0 || len(errs) != 1 {
		t.Errorf("files = %v, errs = %v", files, errs)
	}
}

func TestRunSequential(t *testing.T) {
	dir := t.TempDir()
	clean := writeFile(t, dir, "clean.nu", "let fine = 5\n")
	dirty := writeFile(t, dir, "dirty.nu", "let myVariable = 5\n")

	runner := NewRunner(Options{Rules: rules.All()})
	fileSet, results, err := runner.Run(context.Background(), []string{clean, dirty})
	if err != nil {
		t.Fatal(err)
	}
	if fileSet.Len() != 2 {
		t.Errorf("fileSet.Len() = %d", fileSet.Len())
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if len(results[0].Violations) != 0 {
		t.Errorf("clean file got %d violations", len(results[0].Violations))
	}
	if len(results[1].Violations) != 1 || results[1].Violations[0].RuleID != "snake_case_variables" {
		t.Errorf("dirty file violations = %+v", results[1].Violations)
	}
	if got := ExitCode(results); got != 1 {
		t.Errorf("ExitCode = %d, want 1", got)
	}
}

func TestRunOverDirectory(t *testing.T) {
	dir := t.TempDir()
	clean := writeFile(t, dir, "clean.nu", "let fine = 5\n")
	dirty := writeFile(t, dir, "dirty.nu", "let myVariable = 5\n")
	writeFile(t, dir, "notes.txt", "not a script\n")

	files, errs := CollectFiles([]string{dir})
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if !reflect.DeepEqual(files, []string{clean, dirty}) {
		t.Fatalf("files = %v", files)
	}

	runner := NewRunner(Options{Rules: rules.All()})
	fileSet, results, err := runner.Run(context.Background(), files)
	if err != nil {
		t.Fatal(err)
	}
	violations := Flatten(fileSet, results)
	if len(violations) != 1 || violations[0].RuleID != "snake_case_variables" {
		t.Errorf("violations = %+v", violations)
	}
	if got := ExitCode(results); got != 1 {
		t.Errorf("ExitCode = %d, want 1", got)
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.nu", "b.nu", "c.nu", "d.nu"} {
		files = append(files, writeFile(t, dir, name, "let myVariable = 5\n"))
	}

	seq := NewRunner(Options{Rules: rules.All()})
	seqSet, seqResults, err := seq.Run(context.Background(), files)
	if err != nil {
		t.Fatal(err)
	}
	par := NewRunner(Options{Rules: rules.All(), Parallel: true, Jobs: 3})
	parSet, parResults, err := par.Run(context.Background(), files)
	if err != nil {
		t.Fatal(err)
	}

	seqFlat := Flatten(seqSet, seqResults)
	parFlat := Flatten(parSet, parResults)
	if len(seqFlat) != len(parFlat) {
		t.Fatalf("sequential %d violations, parallel %d", len(seqFlat), len(parFlat))
	}
	for i := range seqFlat {
		if seqFlat[i].RuleID != parFlat[i].RuleID || seqFlat[i].Message != parFlat[i].Message {
			t.Errorf("violation %d differs: %+v vs %+v", i, seqFlat[i], parFlat[i])
		}
	}
}

func TestRunContinuesPastUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.nu", "let myVariable = 5\n")
	missing := filepath.Join(dir, "missing.nu")

	runner := NewRunner(Options{Rules: rules.All()})
	_, results, err := runner.Run(context.Background(), []string{missing, good})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err == nil {
		t.Error("expected IO error for missing file")
	}
	if results[1].Err != nil || len(results[1].Violations) != 1 {
		t.Errorf("good file result = %+v", results[1])
	}
	if got := ExitCode(results); got != 1 {
		t.Errorf("ExitCode = %d, want 1 (one file linted successfully)", got)
	}
}

func TestExitCodeAllUnreadable(t *testing.T) {
	results := []FileResult{{Path: "a.nu", Err: os.ErrNotExist}}
	if got := ExitCode(results); got != 2 {
		t.Errorf("ExitCode = %d, want 2", got)
	}
}

func TestExitCodeClean(t *testing.T) {
	results := []FileResult{{Path: "a.nu"}}
	if got := ExitCode(results); got != 0 {
		t.Errorf("ExitCode = %d, want 0", got)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestProgressEvents(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.nu", "let myVariable = 5\n")

	sink := &recordingSink{}
	runner := NewRunner(Options{Rules: rules.All(), Progress: sink})
	if _, _, err := runner.Run(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}

	var statuses []Status
	for _, ev := range sink.events {
		statuses = append(statuses, ev.Status)
	}
	want := []Status{StatusQueued, StatusLinting, StatusProblems}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("statuses = %v, want %v", statuses, want)
	}
}
