package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"nulint/internal/diag"
	"nulint/internal/lint"
	"nulint/internal/source"
)

// Current schema version - increment when CachedResult format changes.
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest = [sha256.Size]byte

// DiskCache stores per-file lint results keyed by content digest. A hit
// skips parse and rule execution entirely; the cached violations are rebound
// to the current FileSet ids on load. Thread-safe for concurrent workers.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedResult is the on-disk payload for one linted file.
type CachedResult struct {
	Schema     uint16
	Violations []CachedViolation
}

// CachedSpan is a span with the file id stripped; it is rebound on load.
type CachedSpan struct {
	Start uint32
	End   uint32
}

// CachedLabel mirrors diag.Label.
type CachedLabel struct {
	Span    CachedSpan
	Message string
}

// CachedFix mirrors diag.Fix.
type CachedFix struct {
	Explanation  string
	Replacements []CachedReplacement
}

// CachedReplacement mirrors diag.Replacement.
type CachedReplacement struct {
	Span    CachedSpan
	NewText string
}

// CachedViolation mirrors diag.Violation for files whose findings stay
// within the file itself.
type CachedViolation struct {
	RuleID  string
	Level   uint8
	Message string
	Primary CachedLabel
	Extra   []CachedLabel
	Help    string
	URL     string
	Tags    []uint8
	Fix     *CachedFix
}

// OpenDiskCache initializes a disk cache at the standard XDG location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "results", hexKey+".mp")
}

// Put serializes and writes a result to the disk cache atomically.
func (c *DiskCache) Put(key Digest, res *CachedResult) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a result from the disk cache. A schema mismatch or decode
// failure counts as a miss, never an error: stale entries are simply relint
// fodder.
func (c *DiskCache) Get(key Digest, out *CachedResult) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, nil
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// ResultKey derives the cache key for one file: its content plus everything
// that can change the lint outcome (config and registry).
func ResultKey(content []byte, configDigest Digest, ruleIDs []string) Digest {
	h := sha256.New()
	h.Write(content)
	h.Write(configDigest[:])
	for _, id := range ruleIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

// ConfigDigest hashes the effective configuration.
func ConfigDigest(cfg *lint.Config) Digest {
	h := sha256.New()
	if cfg != nil {
		fmt.Fprintf(h, "general.max_severity=%s\n", cfg.General.MaxSeverity)
		ids := make([]string, 0, len(cfg.Rules))
		for id := range cfg.Rules {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(h, "rules.%s=%s\n", id, cfg.Rules[id])
		}
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

// EncodeViolations converts violations to the cacheable form. Violations
// that point into other files cannot be rebound on load, so their presence
// makes the whole file uncacheable.
func EncodeViolations(violations []diag.Violation) ([]CachedViolation, bool) {
	out := make([]CachedViolation, 0, len(violations))
	for i := range violations {
		v := &violations[i]
		if len(v.Externals) > 0 {
			return nil, false
		}
		cv := CachedViolation{
			RuleID:  v.RuleID,
			Level:   uint8(v.Level),
			Message: v.Message,
			Primary: cachedLabel(v.Primary),
			Help:    v.Help,
			URL:     v.URL,
		}
		for _, extra := range v.Extra {
			cv.Extra = append(cv.Extra, cachedLabel(extra))
		}
		for _, tag := range v.Tags {
			cv.Tags = append(cv.Tags, uint8(tag))
		}
		if v.Fix != nil {
			cf := &CachedFix{Explanation: v.Fix.Explanation}
			for _, r := range v.Fix.Replacements {
				cf.Replacements = append(cf.Replacements, CachedReplacement{
					Span:    cachedSpan(r.Span),
					NewText: r.NewText,
				})
			}
			cv.Fix = cf
		}
		out = append(out, cv)
	}
	return out, true
}

// DecodeViolations rebinds cached violations to the given file id.
func DecodeViolations(cached []CachedViolation, fileID source.FileID) []diag.Violation {
	out := make([]diag.Violation, 0, len(cached))
	for i := range cached {
		cv := &cached[i]
		v := diag.Violation{
			RuleID:  cv.RuleID,
			Level:   diag.LintLevel(cv.Level),
			Message: cv.Message,
			Primary: liveLabel(cv.Primary, fileID),
			Help:    cv.Help,
			URL:     cv.URL,
		}
		for _, extra := range cv.Extra {
			v.Extra = append(v.Extra, liveLabel(extra, fileID))
		}
		for _, tag := range cv.Tags {
			v.Tags = append(v.Tags, diag.Tag(tag))
		}
		if cv.Fix != nil {
			f := &diag.Fix{Explanation: cv.Fix.Explanation}
			for _, r := range cv.Fix.Replacements {
				f.Replacements = append(f.Replacements, diag.Replacement{
					Span:    liveSpan(r.Span, fileID),
					NewText: r.NewText,
				})
			}
			v.Fix = f
		}
		out = append(out, v)
	}
	return out
}

func cachedSpan(s source.Span) CachedSpan {
	return CachedSpan{Start: s.Start, End: s.End}
}

func cachedLabel(l diag.Label) CachedLabel {
	return CachedLabel{Span: cachedSpan(l.Span), Message: l.Message}
}

func liveSpan(s CachedSpan, fileID source.FileID) source.Span {
	return source.NewSpan(fileID, s.Start, s.End)
}

func liveLabel(l CachedLabel, fileID source.FileID) diag.Label {
	return diag.Label{Span: liveSpan(l.Span, fileID), Message: l.Message}
}
