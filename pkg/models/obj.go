package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/flyby/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file. Only positions and faces are read.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ReadOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return mesh, nil
}

// ReadOBJ parses OBJ text. Faces may use v, v/vt, v//vn or v/vt/vn forms
// with 1-based or negative (relative) indices; polygons with more than
// three corners are fan-triangulated. Everything other than v and f lines
// is ignored.
func ReadOBJ(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			mesh.AddVertex(v)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs 3 vertices, got %d", lineNo, len(fields)-1)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				i, err := parseFaceIndex(tok, len(mesh.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				mesh.AddFace(idx[0], idx[k], idx[k+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func parseVertex(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := range c {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("parse vertex coordinate %q: %w", fields[i], err)
		}
		c[i] = f
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}

// parseFaceIndex resolves one face corner to a 0-based vertex index given
// the number of vertices read so far.
func parseFaceIndex(tok string, count int) (int, error) {
	pos, _, _ := strings.Cut(tok, "/")
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("parse face index %q: %w", tok, err)
	}

	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = count + n
	default:
		return 0, fmt.Errorf("face index 0: %w", ErrBadIndex)
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("face index %d with %d vertices: %w", n, count, ErrBadIndex)
	}
	return idx, nil
}
