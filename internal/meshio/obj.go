// Package meshio loads the triangle mesh that cmd/ladc feeds into the
// preprocessor. No mesh-format library exists anywhere in the
// retrieval pack (no gltf/assimp/meshopt binding for Go), so this is
// a small hand-rolled Wavefront OBJ reader in the teacher's own
// stdlib-parsing style (bufio.Scanner + strconv, as used throughout
// mod_client_helpers.go's tag parsing).
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is the flat, triangulated, per-vertex-indexed form the
// Hierarchy Builder consumes: Positions/Normals/UVs are indexed by
// the same index space as Indices.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// LoadOBJ reads a Wavefront OBJ file, triangulating any polygonal
// face with a simple fan and expanding the v/vt/vn index triples into
// one flat per-corner vertex (OBJ allows a position to be reused with
// different normals/uvs, which the Hierarchy Builder's single index
// space does not).
func LoadOBJ(path string) (Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return Mesh{}, fmt.Errorf("meshio: open %s: %w", path, err)
	}
	defer f.Close()
	return parseOBJ(f)
}

type objKey struct {
	v, vt, vn int
}

func parseOBJ(r io.Reader) (Mesh, error) {
	var positions, normals []mgl32.Vec3
	var uvs []mgl32.Vec2

	var out Mesh
	seen := make(map[objKey]uint32)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return Mesh{}, fmt.Errorf("meshio: line %d: %w", lineNo, err)
			}
			positions = append(positions, p)
		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return Mesh{}, fmt.Errorf("meshio: line %d: %w", lineNo, err)
			}
			normals = append(normals, n)
		case "vt":
			uv, err := parseVec2(fields[1:])
			if err != nil {
				return Mesh{}, fmt.Errorf("meshio: line %d: %w", lineNo, err)
			}
			uvs = append(uvs, uv)
		case "f":
			corners := make([]uint32, 0, len(fields)-1)
			for _, token := range fields[1:] {
				key, err := parseFaceToken(token)
				if err != nil {
					return Mesh{}, fmt.Errorf("meshio: line %d: %w", lineNo, err)
				}
				idx, ok := seen[key]
				if !ok {
					idx = uint32(len(out.Positions))
					seen[key] = idx
					out.Positions = append(out.Positions, lookupVec3(positions, key.v))
					if key.vn != 0 {
						out.Normals = append(out.Normals, lookupVec3(normals, key.vn))
					} else {
						out.Normals = append(out.Normals, mgl32.Vec3{0, 1, 0})
					}
					if key.vt != 0 {
						out.UVs = append(out.UVs, lookupVec2(uvs, key.vt))
					} else {
						out.UVs = append(out.UVs, mgl32.Vec2{0, 0})
					}
				}
				corners = append(corners, idx)
			}
			// Fan triangulation, same convention as every other
			// flat-polygon OBJ consumer.
			for i := 1; i+1 < len(corners); i++ {
				out.Indices = append(out.Indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Mesh{}, fmt.Errorf("meshio: scan: %w", err)
	}
	if len(out.Positions) == 0 {
		return Mesh{}, fmt.Errorf("meshio: no vertices found")
	}
	return out, nil
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseVec2(fields []string) (mgl32.Vec2, error) {
	if len(fields) < 2 {
		return mgl32.Vec2{}, fmt.Errorf("expected 2 components, got %d", len(fields))
	}
	var v mgl32.Vec2
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec2{}, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseFaceToken parses one "v", "v/vt", "v//vn" or "v/vt/vn" token
// into 1-based OBJ indices (0 meaning absent).
func parseFaceToken(token string) (objKey, error) {
	parts := strings.Split(token, "/")
	var key objKey
	var err error
	key.v, err = strconv.Atoi(parts[0])
	if err != nil {
		return objKey{}, fmt.Errorf("bad face vertex index %q: %w", token, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		key.vt, err = strconv.Atoi(parts[1])
		if err != nil {
			return objKey{}, fmt.Errorf("bad face uv index %q: %w", token, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		key.vn, err = strconv.Atoi(parts[2])
		if err != nil {
			return objKey{}, fmt.Errorf("bad face normal index %q: %w", token, err)
		}
	}
	return key, nil
}

// lookupVec3 resolves a 1-based OBJ index, supporting OBJ's negative
// (relative-to-end) index convention.
func lookupVec3(v []mgl32.Vec3, idx int) mgl32.Vec3 {
	if idx < 0 {
		idx = len(v) + idx + 1
	}
	if idx < 1 || idx > len(v) {
		return mgl32.Vec3{}
	}
	return v[idx-1]
}

func lookupVec2(v []mgl32.Vec2, idx int) mgl32.Vec2 {
	if idx < 0 {
		idx = len(v) + idx + 1
	}
	if idx < 1 || idx > len(v) {
		return mgl32.Vec2{}
	}
	return v[idx-1]
}
