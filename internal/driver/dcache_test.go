package driver

import (
	"context"
	"testing"

	"nulint/internal/lint"
	"nulint/internal/rules"
	"nulint/internal/source"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	content := []byte("let myVariable = 5\n")
	key := ResultKey(content, ConfigDigest(nil), []string{"snake_case_variables"})

	var miss CachedResult
	if hit, err := cache.Get(key, &miss); err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}

	put := CachedResult{
		Schema: diskCacheSchemaVersion,
		Violations: []CachedViolation{{
			RuleID:  "snake_case_variables",
			Level:   2,
			Message: "variable name is not snake_case",
			Primary: CachedLabel{Span: CachedSpan{Start: 4, End: 14}},
			Fix: &CachedFix{
				Explanation:  "rename to snake_case",
				Replacements: []CachedReplacement{{Span: CachedSpan{Start: 4, End: 14}, NewText: "my_variable"}},
			},
		}},
	}
	if err := cache.Put(key, &put); err != nil {
		t.Fatal(err)
	}

	var got CachedResult
	hit, err := cache.Get(key, &got)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if len(got.Violations) != 1 || got.Violations[0].RuleID != "snake_case_variables" {
		t.Errorf("violations = %+v", got.Violations)
	}
	if got.Violations[0].Fix == nil || got.Violations[0].Fix.Replacements[0].NewText != "my_variable" {
		t.Errorf("fix = %+v", got.Violations[0].Fix)
	}
}

func TestDiskCacheSchemaMismatchIsMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := ResultKey([]byte("x"), Digest{}, nil)
	if err := cache.Put(key, &CachedResult{Schema: diskCacheSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}
	var out CachedResult
	if hit, err := cache.Get(key, &out); err != nil || hit {
		t.Errorf("stale schema should miss, got hit=%v err=%v", hit, err)
	}
}

func TestResultKeySensitivity(t *testing.T) {
	content := []byte("ls\n")
	base := ResultKey(content, Digest{}, []string{"a"})
	if ResultKey([]byte("ls | length\n"), Digest{}, []string{"a"}) == base {
		t.Error("key ignores content")
	}
	if ResultKey(content, Digest{1}, []string{"a"}) == base {
		t.Error("key ignores config digest")
	}
	if ResultKey(content, Digest{}, []string{"a", "b"}) == base {
		t.Error("key ignores rule set")
	}
}

func TestConfigDigestDistinguishesOverrides(t *testing.T) {
	plain := ConfigDigest(lint.DefaultConfig())
	cfg := lint.DefaultConfig()
	cfg.Rules = map[string]string{"unneeded_mut": "off"}
	if ConfigDigest(cfg) == plain {
		t.Error("override not reflected in digest")
	}
}

func TestEncodeDecodeViolationsRebindFileID(t *testing.T) {
	fs := source.NewFileSet()
	state := lint.NewState(rules.All(), nil)
	violations := state.LintString(fs, "a.nu", []byte("let myVariable = 5\n"))
	if len(violations) == 0 {
		t.Fatal("fixture produced no violations")
	}

	encoded, ok := EncodeViolations(violations)
	if !ok {
		t.Fatal("violations should be cacheable")
	}
	const newID = source.FileID(7)
	decoded := DecodeViolations(encoded, newID)
	if len(decoded) != len(violations) {
		t.Fatalf("decoded %d, want %d", len(decoded), len(violations))
	}
	for i := range decoded {
		if decoded[i].Primary.Span.File != newID {
			t.Errorf("violation %d not rebound: %+v", i, decoded[i].Primary.Span)
		}
		if decoded[i].RuleID != violations[i].RuleID ||
			decoded[i].Message != violations[i].Message ||
			decoded[i].Level != violations[i].Level {
			t.Errorf("violation %d fields differ", i)
		}
		if (decoded[i].Fix == nil) != (violations[i].Fix == nil) {
			t.Errorf("violation %d fix presence differs", i)
		}
	}
}

func TestRunWithCacheHitsOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.nu", "let myVariable = 5\n")
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	first := NewRunner(Options{Rules: rules.All(), Cache: cache})
	_, firstResults, err := first.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	second := NewRunner(Options{Rules: rules.All(), Cache: cache})
	_, secondResults, err := second.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}

	if len(firstResults[0].Violations) != len(secondResults[0].Violations) {
		t.Fatalf("cached run differs: %d vs %d violations",
			len(firstResults[0].Violations), len(secondResults[0].Violations))
	}
	for i := range firstResults[0].Violations {
		if firstResults[0].Violations[i].RuleID != secondResults[0].Violations[i].RuleID {
			t.Errorf("violation %d rule differs", i)
		}
	}
}
