package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for a mesh path with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown mesh format")

// Load loads a mesh by path: "builtin:<name>" generates one, .obj, .gltf
// and .glb files are parsed.
func Load(path string) (*Mesh, error) {
	if name, ok := strings.CutPrefix(path, BuiltinPrefix); ok {
		return Builtin(name)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("load %s: %w", path, ErrUnknownFormat)
	}
}
