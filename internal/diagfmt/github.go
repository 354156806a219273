package diagfmt

import (
	"fmt"
	"io"

	"nulint/internal/diag"
	"nulint/internal/source"
)

// GithubFallbackNote explains that the github format is not implemented
// as workflow commands yet.
const GithubFallbackNote = "note: the github format is not implemented yet; falling back to text output"

// Github prints the fallback note and then the text rendering.
func Github(w io.Writer, violations []diag.Violation, fs *source.FileSet, opts TextOpts) {
	fmt.Fprintln(w, GithubFallbackNote)
	Text(w, violations, fs, opts)
}
