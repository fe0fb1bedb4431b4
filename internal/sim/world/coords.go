package world

import genpkg "voxelforge.dev/internal/sim/world/terrain/gen"

// Vec3i is an integer world-space voxel position.
type Vec3i struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// ChunkCoord identifies a chunk in chunk-grid units.
type ChunkCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// WorldToChunk maps a world voxel position to its chunk coordinate and
// local offset for chunk edge length n. Floor division keeps the mapping a
// bijection across the origin; local offsets are always in [0, n).
func WorldToChunk(p Vec3i, n int) (ChunkCoord, Vec3i) {
	c := ChunkCoord{
		X: genpkg.FloorDiv(p.X, n),
		Y: genpkg.FloorDiv(p.Y, n),
		Z: genpkg.FloorDiv(p.Z, n),
	}
	l := Vec3i{
		X: genpkg.Mod(p.X, n),
		Y: genpkg.Mod(p.Y, n),
		Z: genpkg.Mod(p.Z, n),
	}
	return c, l
}

// ChunkToWorldOrigin returns the world position of the chunk's minimum corner.
func ChunkToWorldOrigin(c ChunkCoord, n int) Vec3i {
	return Vec3i{X: c.X * n, Y: c.Y * n, Z: c.Z * n}
}

// FaceNeighbors returns the six face-sharing neighbor coordinates.
func (c ChunkCoord) FaceNeighbors() [6]ChunkCoord {
	return [6]ChunkCoord{
		{c.X + 1, c.Y, c.Z},
		{c.X - 1, c.Y, c.Z},
		{c.X, c.Y + 1, c.Z},
		{c.X, c.Y - 1, c.Z},
		{c.X, c.Y, c.Z + 1},
		{c.X, c.Y, c.Z - 1},
	}
}

// Chebyshev is the chunk-space distance metric used consistently by the
// streaming controller for both the desired set and the unload sweep.
func Chebyshev(a, b ChunkCoord) int {
	d := genpkg.AbsInt(a.X - b.X)
	d = genpkg.MaxInt(d, genpkg.AbsInt(a.Y-b.Y))
	d = genpkg.MaxInt(d, genpkg.AbsInt(a.Z-b.Z))
	return d
}
