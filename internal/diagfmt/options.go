// Package diagfmt renders violations for humans (annotated snippets) and
// for tools (LSP-shaped JSON keyed by file URI).
package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) key() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	}
	return "auto"
}

// TextOpts configures the human-readable formatter.
type TextOpts struct {
	Color    bool
	PathMode PathMode
	// Describe supplies a rule's long description and documentation URL
	// for the help block. Nil leaves the help block to the violation's
	// own fields.
	Describe func(ruleID string) (long, url string)
}

// JSONOpts configures the structured formatter.
type JSONOpts struct {
	PathMode PathMode
}
