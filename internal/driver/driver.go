package driver

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/source"
)

// Status describes where a file is in its lint lifecycle.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusLinting  Status = "linting"
	StatusClean    Status = "clean"
	StatusProblems Status = "problems"
	StatusError    Status = "error"
)

// Event is one progress notification. File is empty for run-level events.
type Event struct {
	File       string
	Status     Status
	Violations int
	Err        error
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent calls when the run is parallel.
type ProgressSink interface {
	OnEvent(Event)
}

// Options configures a lint run over a set of paths.
type Options struct {
	Rules    []lint.Rule
	Config   *lint.Config
	Parallel bool
	Jobs     int // <=0 means GOMAXPROCS
	Cache    *DiskCache
	Progress ProgressSink
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path       string
	FileID     source.FileID
	Violations []diag.Violation
	Err        error // IO failure; the file was not linted
}

// Runner executes lint runs against a shared state.
type Runner struct {
	state        *lint.State
	opts         Options
	configDigest Digest
	ruleIDs      []string
}

// NewRunner builds a runner. The state is constructed once and shared by
// every file in every run.
func NewRunner(opts Options) *Runner {
	state := lint.NewState(opts.Rules, opts.Config)
	ids := make([]string, 0, len(opts.Rules))
	for _, r := range opts.Rules {
		ids = append(ids, r.Meta().ID)
	}
	return &Runner{
		state:        state,
		opts:         opts,
		configDigest: ConfigDigest(state.Config),
		ruleIDs:      ids,
	}
}

// State exposes the shared lint state, for callers that need rule lookup.
func (r *Runner) State() *lint.State { return r.state }

// Run lints every file, sequentially by default or with a worker pool when
// Parallel is set. The returned results are ordered by path; the FileSet
// holds every file that loaded successfully.
func (r *Runner) Run(ctx context.Context, files []string) (*source.FileSet, []FileResult, error) {
	fileSet := source.NewFileSet()
	results := make([]FileResult, len(files))

	// Preload sequentially so workers never mutate the set.
	ids := make([]source.FileID, len(files))
	for i, path := range files {
		results[i].Path = path
		r.emit(Event{File: path, Status: StatusQueued})
		id, err := fileSet.Load(path)
		if err != nil {
			results[i].Err = err
			r.emit(Event{File: path, Status: StatusError, Err: err})
			continue
		}
		ids[i] = id
		results[i].FileID = id
	}

	if !r.opts.Parallel {
		for i := range files {
			if results[i].Err != nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return fileSet, results, err
			}
			r.lintOne(fileSet, &results[i])
		}
		return fileSet, results, nil
	}

	jobs := r.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i := range files {
		if results[i].Err != nil {
			continue
		}
		i := i // per-iteration copy; required under go1.21 loop semantics
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// Index is unique per goroutine, no mutex needed.
			r.lintOne(fileSet, &results[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// lintOne lints a preloaded file, going through the disk cache when one is
// configured.
func (r *Runner) lintOne(fileSet *source.FileSet, res *FileResult) {
	file := fileSet.Get(res.FileID)
	r.emit(Event{File: res.Path, Status: StatusLinting})

	var key Digest
	if r.opts.Cache != nil {
		key = ResultKey(file.Content, r.configDigest, r.ruleIDs)
		var cached CachedResult
		if hit, err := r.opts.Cache.Get(key, &cached); err == nil && hit {
			res.Violations = DecodeViolations(cached.Violations, res.FileID)
			r.emitOutcome(res)
			return
		}
	}

	res.Violations = r.state.LintLoaded(fileSet, file)

	if r.opts.Cache != nil {
		if encoded, ok := EncodeViolations(res.Violations); ok {
			// Best effort; a failed write only costs the next run a relint.
			_ = r.opts.Cache.Put(key, &CachedResult{
				Schema:     diskCacheSchemaVersion,
				Violations: encoded,
			})
		}
	}
	r.emitOutcome(res)
}

func (r *Runner) emitOutcome(res *FileResult) {
	if len(res.Violations) > 0 {
		r.emit(Event{File: res.Path, Status: StatusProblems, Violations: len(res.Violations)})
	} else {
		r.emit(Event{File: res.Path, Status: StatusClean})
	}
}

func (r *Runner) emit(ev Event) {
	if r.opts.Progress != nil {
		r.opts.Progress.OnEvent(ev)
	}
}

// Flatten merges per-file violations into one globally sorted list keyed by
// (path, span start, rule id).
func Flatten(fileSet *source.FileSet, results []FileResult) []diag.Violation {
	bag := diag.NewBag()
	for i := range results {
		bag.AddAll(results[i].Violations)
	}
	bag.Sort(fileSet)
	return bag.Items()
}

// ExitCode folds results into the process exit status: 0 clean, 1 when any
// violation was reported, 2 when nothing could be linted at all.
func ExitCode(results []FileResult) int {
	linted := 0
	violations := 0
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		linted++
		violations += len(results[i].Violations)
	}
	if len(results) > 0 && linted == 0 {
		return 2
	}
	if violations > 0 {
		return 1
	}
	return 0
}

// SortResults orders results by path for deterministic output.
func SortResults(results []FileResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
}
