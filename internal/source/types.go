package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (stdin, test, LSP buffer).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // byte offsets of '\n' terminators
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable position in a source file (1-based).
type LineCol struct {
	Line uint32
	Col  uint32
}

// Position is an LSP-convention position: 0-based line, UTF-16 column.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a pair of LSP positions derived from a span.
type Range struct {
	Start Position
	End   Position
}
