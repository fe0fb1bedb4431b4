// Package mesh turns one chunk's voxel grid into a minimal set of quads via
// greedy face merging. Meshing is a pure function of the chunk and its
// neighbors' voxel state; it borrows the store read-only and owns nothing.
package mesh

import (
	"voxelforge.dev/internal/sim/voxel"
	"voxelforge.dev/internal/sim/world"
)

// Direction is one of the six axis-aligned face orientations.
type Direction uint8

const (
	XPos Direction = iota
	XNeg
	YPos
	YNeg
	ZPos
	ZNeg
)

var dirNames = [6]string{"+x", "-x", "+y", "-y", "+z", "-z"}

func (d Direction) String() string { return dirNames[d] }

// Axis returns the normal axis index (0=X, 1=Y, 2=Z).
func (d Direction) Axis() int { return int(d) / 2 }

// Sign returns +1 for the positive-facing directions, -1 otherwise.
func (d Direction) Sign() int {
	if d%2 == 0 {
		return 1
	}
	return -1
}

// Normal returns the unit normal as an integer vector.
func (d Direction) Normal() [3]int {
	var n [3]int
	n[d.Axis()] = d.Sign()
	return n
}

// Quad is one merged rectangle of same-type visible faces. Coordinates are
// chunk-local cells: Layer indexes the voxel slab along the normal axis,
// (U0, V0) is the rectangle origin in the cross-section plane and (DU, DV)
// its extent, with the U axis = (axis+1)%3 and V axis = (axis+2)%3.
type Quad struct {
	Type  voxel.Type `json:"t"`
	Dir   Direction  `json:"d"`
	Layer int        `json:"w"`
	U0    int        `json:"u"`
	V0    int        `json:"v"`
	DU    int        `json:"du"`
	DV    int        `json:"dv"`
}

// Corners returns the four quad corners in chunk-local coordinates, wound
// counter-clockwise when viewed from the outward normal side.
func (q Quad) Corners() [4][3]int {
	d := q.Dir.Axis()
	u := (d + 1) % 3
	v := (d + 2) % 3

	plane := q.Layer
	if q.Dir.Sign() > 0 {
		plane++
	}

	mk := func(du, dv int) [3]int {
		var p [3]int
		p[d] = plane
		p[u] = q.U0 + du
		p[v] = q.V0 + dv
		return p
	}
	// CCW traversal in the (u, v) plane faces the positive axis; reverse
	// for the negative-facing directions.
	if q.Dir.Sign() > 0 {
		return [4][3]int{mk(0, 0), mk(q.DU, 0), mk(q.DU, q.DV), mk(0, q.DV)}
	}
	return [4][3]int{mk(0, 0), mk(0, q.DV), mk(q.DU, q.DV), mk(q.DU, 0)}
}

// CoveredCells enumerates the chunk-local voxel cells whose face this quad
// covers. Tests use it to rasterize a quad set back into per-face coverage.
func (q Quad) CoveredCells() [][3]int {
	d := q.Dir.Axis()
	u := (d + 1) % 3
	v := (d + 2) % 3

	cells := make([][3]int, 0, q.DU*q.DV)
	for dv := 0; dv < q.DV; dv++ {
		for du := 0; du < q.DU; du++ {
			var p [3]int
			p[d] = q.Layer
			p[u] = q.U0 + du
			p[v] = q.V0 + dv
			cells = append(cells, p)
		}
	}
	return cells
}

// ChunkMesh is the output of meshing one chunk: opaque and transparent quad
// lists, emitted as separate passes so the renderer can draw them with
// different treatment. The core produces it once per (re)mesh and does not
// manage its GPU lifetime.
type ChunkMesh struct {
	Coord       world.ChunkCoord `json:"coord"`
	Opaque      []Quad           `json:"opaque,omitempty"`
	Transparent []Quad           `json:"transparent,omitempty"`
}

// Empty reports whether the mesh has no geometry at all.
func (m *ChunkMesh) Empty() bool {
	return len(m.Opaque) == 0 && len(m.Transparent) == 0
}

// Source provides read-only chunk lookups during one meshing pass. Absent
// chunks read as nil and their voxels count as Air. *world.ChunkStore
// satisfies it.
type Source interface {
	Get(c world.ChunkCoord) *world.ChunkData
}
