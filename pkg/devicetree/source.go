package devicetree

import (
	"context"
	"io/fs"
	"path/filepath"
)

// Source identifies where a resolved tree document originated so loaders can
// operate on files or fs.FS entries without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile  SourceKind = "file"
	SourceKindFS    SourceKind = "fs"
	SourceKindBytes SourceKind = "bytes"
)

// Loader fetches and parses a resolved tree document from a Source.
type Loader interface {
	Load(ctx context.Context, src Source) (*Document, error)
}

// LoaderOptions carries pre-resolved loader configuration.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS sources.
	FileSystem fs.FS
}

// fileSource identifies an on-disk document.
type fileSource struct {
	path string
}

func (s fileSource) Kind() SourceKind { return SourceKindFile }
func (s fileSource) Location() string { return s.path }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// fsSource references a path within the loader's configured fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Kind() SourceKind { return SourceKindFS }
func (s fsSource) Location() string { return s.name }

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// bytesSource carries an in-memory document, used by callers that already
// hold the serialised tree.
type bytesSource struct {
	name string
	data []byte
}

func (s bytesSource) Kind() SourceKind { return SourceKindBytes }
func (s bytesSource) Location() string { return s.name }

// Bytes exposes the raw payload for loaders.
func (s bytesSource) Bytes() []byte { return s.data }

// SourceFromBytes returns a Source wrapping an in-memory document. The name
// is only used in diagnostics and to pick the parse format by extension.
func SourceFromBytes(name string, data []byte) Source {
	return bytesSource{name: name, data: data}
}
