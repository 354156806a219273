package fix

import (
	"nulint/internal/diag"
)

// MaxIterations caps the --fix loop; one fix can expose another, but a
// cycle must not spin forever.
const MaxIterations = 10

// Result summarizes one fixpoint run.
type Result struct {
	Final      []byte
	Applied    int
	Iterations int
}

// Fixpoint applies fixes and re-lints until no fix remains or the
// iteration cap is hit. The lint callback re-parses the buffer it is
// given; offsets in its violations refer to that buffer.
func Fixpoint(src []byte, lint func([]byte) []diag.Violation) (Result, error) {
	res := Result{Final: src}
	for res.Iterations < MaxIterations {
		edits := Collect(lint(res.Final))
		if len(edits) == 0 {
			return res, nil
		}
		next, err := Apply(res.Final, edits)
		if err != nil {
			return res, err
		}
		res.Final = next
		res.Applied += len(edits)
		res.Iterations++
	}
	return res, nil
}
