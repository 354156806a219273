package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestColoredMatchesVersion(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	if got := Colored(); got != Version {
		t.Errorf("Colored() = %q, want %q", got, Version)
	}
}

func TestFullIncludesCommitAndDate(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit = "abc123"
	BuildDate = "2025-01-15T10:30:00Z"
	full := Full()
	if !strings.Contains(full, "abc123") || !strings.Contains(full, "2025-01-15") {
		t.Errorf("Full() = %q, want commit and date", full)
	}
}

func TestSplitVersion(t *testing.T) {
	major, minor, rest, ok := splitVersion("1.2.3-dev")
	if !ok || major != "1" || minor != "2" || rest != "3-dev" {
		t.Errorf("splitVersion = %q %q %q %v", major, minor, rest, ok)
	}
	if _, _, _, ok := splitVersion("weird"); ok {
		t.Error("splitVersion should reject non-semver strings")
	}
}
