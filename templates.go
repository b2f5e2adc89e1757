package dtgen

import (
	"embed"
	"io/fs"

	"github.com/evenl/dtgen/pkg/catalog"
)

//go:embed templates
var builtinFS embed.FS

// BuiltinTemplates exposes the built-in driver template definitions so
// callers can reuse or extend them without shipping a catalog directory.
func BuiltinTemplates() fs.FS {
	fsys, err := fs.Sub(builtinFS, "templates")
	if err != nil {
		panic(err)
	}
	return fsys
}

// BuiltinCatalog loads the embedded definitions into a fresh registry.
func BuiltinCatalog() (*catalog.Registry, error) {
	return catalog.LoadFS(BuiltinTemplates())
}
