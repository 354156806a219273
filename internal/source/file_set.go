package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and resolves spans to
// human-readable positions. One FileSet lives per lint invocation (CLI)
// or per document version (LSP); it is not safe for concurrent mutation.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> latest id
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase creates a FileSet with a base directory for
// relative path formatting.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir returns the base directory, defaulting to the working directory.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fs.baseDir
}

// Add stores a file from normalized bytes, computes the line index and
// content hash, and returns a fresh FileID. A path may be added more than
// once (LSP document versions); the index always points at the latest.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	fs.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (stdin, test, LSP buffer).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

// GetByPath returns the latest *File for a path, if one was loaded.
func (fs *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fs.index[normalizePath(path)]; ok {
		return &fs.files[id], true
	}
	return nil, false
}

// Len reports the number of files in the set.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Resolve converts a span into 1-based line and column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Text returns the source text covered by span. A span reaching outside
// the file is a rule bug and is reported, never clamped.
func (fs *FileSet) Text(span Span) (string, error) {
	f := &fs.files[span.File]
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return "", fmt.Errorf("content length overflow: %w", err)
	}
	if span.End > lenContent || span.Start > span.End {
		return "", fmt.Errorf("span %s out of range for %s (len %d)", span, f.Path, lenContent)
	}
	return string(f.Content[span.Start:span.End]), nil
}

// LineCount reports the number of lines in the file. Empty content counts
// as one empty line.
func (f *File) LineCount() int {
	n := len(f.LineIdx) + 1
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] == '\n' {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

// LineOf returns the 0-based line number containing the byte offset.
func (f *File) LineOf(offset uint32) uint32 {
	lc := toLineCol(f.LineIdx, offset)
	return lc.Line - 1
}

// LineStart returns the byte offset where the 0-based line begins.
func (f *File) LineStart(line uint32) uint32 {
	if line == 0 {
		return 0
	}
	if int(line-1) < len(f.LineIdx) {
		return f.LineIdx[line-1] + 1
	}
	return safeLen(f.Content)
}

// LineEnd returns the byte offset just past the 0-based line's content,
// excluding the terminating newline.
func (f *File) LineEnd(line uint32) uint32 {
	if int(line) < len(f.LineIdx) {
		return f.LineIdx[line]
	}
	return safeLen(f.Content)
}

// LineSpan returns the span of the 0-based line, newline excluded.
func (f *File) LineSpan(line uint32) Span {
	return Span{File: f.ID, Start: f.LineStart(line), End: f.LineEnd(line)}
}

// Line returns the content of the 0-based line without its newline.
func (f *File) Line(line uint32) string {
	start, end := f.LineStart(line), f.LineEnd(line)
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath formats the file path. mode is one of
// "absolute", "relative", "basename", "auto".
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return abs
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := filepath.Rel(baseDir, f.Path); err == nil {
			return filepath.ToSlash(rel)
		}
		return f.Path

	case "basename":
		return filepath.Base(f.Path)

	case "auto":
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)

	default:
		return f.Path
	}
}

func safeLen(b []byte) uint32 {
	v, err := safecast.Conv[uint32](len(b))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return v
}
