package version

import "github.com/fatih/color"

// Version information for the nu-lint CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders the version with each component highlighted. Color is
// stripped automatically when stdout is not a terminal.
func Colored() string {
	major, minor, rest, ok := splitVersion(Version)
	if !ok {
		return Version
	}
	return versionMajorColor.Sprint(major) + "." + versionMinorColor.Sprint(minor) + "." + versionPatchColor.Sprint(rest)
}

// Full is the colored version plus commit and build date when present.
func Full() string {
	s := Colored()
	if GitCommit != "" {
		s += " (" + GitCommit
		if BuildDate != "" {
			s += ", " + BuildDate
		}
		s += ")"
	} else if BuildDate != "" {
		s += " (" + BuildDate + ")"
	}
	return s
}

func splitVersion(v string) (major, minor, rest string, ok bool) {
	first, second := -1, -1
	for i := 0; i < len(v); i++ {
		if v[i] != '.' {
			continue
		}
		if first < 0 {
			first = i
		} else {
			second = i
			break
		}
	}
	if second < 0 {
		return "", "", "", false
	}
	return v[:first], v[first+1 : second], v[second+1:], true
}
