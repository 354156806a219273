package diag

import "fmt"

// LintLevel is the severity of a rule or violation. Levels are totally
// ordered: Off < Hint < Warning < Error. Off disables a rule entirely;
// the other levels map one-to-one onto LSP diagnostic severities.
type LintLevel uint8

const (
	LevelOff LintLevel = iota
	LevelHint
	LevelWarning
	LevelError
)

func (l LintLevel) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelHint:
		return "hint"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// ParseLevel parses the TOML/CLI string form of a level.
func ParseLevel(s string) (LintLevel, error) {
	switch s {
	case "off":
		return LevelOff, nil
	case "hint":
		return LevelHint, nil
	case "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return LevelOff, fmt.Errorf("unknown lint level %q (want off|hint|warning|error)", s)
}

// LSPSeverity maps a level onto the LSP DiagnosticSeverity scale
// (1 = error, 2 = warning, 4 = hint). LevelOff never reaches serialization.
func (l LintLevel) LSPSeverity() int {
	switch l {
	case LevelError:
		return 1
	case LevelWarning:
		return 2
	case LevelHint:
		return 4
	}
	return 4
}

// Tag is an LSP diagnostic tag attached to a rule's violations.
type Tag uint8

const (
	// TagUnnecessary marks code that can be removed (rendered faded).
	TagUnnecessary Tag = 1
	// TagDeprecated marks use of a deprecated construct (rendered struck).
	TagDeprecated Tag = 2
)
