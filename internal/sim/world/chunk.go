package world

import "voxelforge.dev/internal/sim/voxel"

// ChunkData owns the dense n³ voxel grid for one chunk coordinate. It is
// exclusively owned by the ChunkStore; the mesher borrows it read-only for
// the duration of one meshing pass.
type ChunkData struct {
	Coord ChunkCoord
	Size  int
	// Voxels is flat, indexed (x*n + y)*n + z.
	Voxels []voxel.Type

	// Modified flips once any voxel differs from its generated state and
	// gates the save-on-evict contract.
	Modified bool
	// MeshDirty marks the chunk as awaiting a (re)mesh pass.
	MeshDirty bool
}

func NewChunkData(coord ChunkCoord, n int) *ChunkData {
	return &ChunkData{
		Coord:  coord,
		Size:   n,
		Voxels: make([]voxel.Type, n*n*n),
	}
}

func (ch *ChunkData) index(x, y, z int) int {
	return (x*ch.Size+y)*ch.Size + z
}

func (ch *ChunkData) inRange(x, y, z int) bool {
	return x >= 0 && x < ch.Size && y >= 0 && y < ch.Size && z >= 0 && z < ch.Size
}

// Get returns the voxel at a local offset; out-of-range reads are Air.
func (ch *ChunkData) Get(x, y, z int) voxel.Type {
	if !ch.inRange(x, y, z) {
		return voxel.Air
	}
	return ch.Voxels[ch.index(x, y, z)]
}

// Set writes one voxel and reports whether the value changed. A change
// marks the chunk modified and its mesh dirty. Out-of-range writes are
// ignored.
func (ch *ChunkData) Set(x, y, z int, t voxel.Type) bool {
	if !ch.inRange(x, y, z) {
		return false
	}
	i := ch.index(x, y, z)
	if ch.Voxels[i] == t {
		return false
	}
	ch.Voxels[i] = t
	ch.Modified = true
	ch.MeshDirty = true
	return true
}

// fill writes the generated state without touching the modified flag.
func (ch *ChunkData) fill(x, y, z int, t voxel.Type) {
	ch.Voxels[ch.index(x, y, z)] = t
}
