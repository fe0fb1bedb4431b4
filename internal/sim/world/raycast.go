package world

import "math"

// RaycastVoxel walks a ray in fixed steps and returns the first solid voxel
// hit plus the last empty cell crossed before it (the placement cell for
// build edits). ok is false when nothing solid lies within reach.
func (w *World) RaycastVoxel(origin, dir [3]float64) (hit, place Vec3i, ok bool) {
	step := w.cfg.Edit.RaycastStepSize
	reach := w.cfg.Edit.ReachDistance

	mag := math.Sqrt(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2])
	if mag == 0 {
		return Vec3i{}, Vec3i{}, false
	}
	nx, ny, nz := dir[0]/mag, dir[1]/mag, dir[2]/mag

	prev := Vec3i{
		X: int(math.Floor(origin[0])),
		Y: int(math.Floor(origin[1])),
		Z: int(math.Floor(origin[2])),
	}
	for d := 0.0; d <= reach; d += step {
		p := Vec3i{
			X: int(math.Floor(origin[0] + nx*d)),
			Y: int(math.Floor(origin[1] + ny*d)),
			Z: int(math.Floor(origin[2] + nz*d)),
		}
		if w.store.VoxelAt(p).Solid() {
			return p, prev, true
		}
		prev = p
	}
	return Vec3i{}, Vec3i{}, false
}
