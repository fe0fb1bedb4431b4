package world

import (
	"math"
	"sort"

	"voxelforge.dev/internal/sim/voxel"
)

// ApplyEdit writes the brush into the store and returns the distinct chunk
// coordinates that were touched, in deterministic order. Each touched chunk
// and each of its resident face-sharing neighbors is re-enqueued for
// meshing: a boundary voxel change can flip a neighbor's visible-face mask.
// Positions in non-resident chunks are skipped; editing outside the loaded
// world is not an error but has no effect.
func (w *World) ApplyEdit(req EditRequest) []ChunkCoord {
	if !req.Type.Valid() {
		if w.log != nil {
			w.log.Printf("edit: invalid voxel type %d ignored", req.Type)
		}
		return nil
	}
	size := req.Size
	if size > w.cfg.Edit.MaxBrushRadius {
		size = w.cfg.Edit.MaxBrushRadius
	}

	touched := make(map[ChunkCoord]struct{})
	write := func(p Vec3i) {
		if w.store.SetVoxelAt(p, req.Type) {
			c, _ := WorldToChunk(p, w.cfg.ChunkSize)
			touched[c] = struct{}{}
		}
	}

	switch req.Shape {
	case BrushCube:
		// Chebyshev distance <= half-extent over voxel centers, inclusive:
		// half-extent 2 edits a 5x5x5 block.
		h := int(math.Floor(size))
		for dx := -h; dx <= h; dx++ {
			for dy := -h; dy <= h; dy++ {
				for dz := -h; dz <= h; dz++ {
					write(req.Pos.Add(Vec3i{dx, dy, dz}))
				}
			}
		}
	default: // BrushBall
		r2 := size * size
		ir := int(math.Floor(size))
		for dx := -ir; dx <= ir; dx++ {
			for dy := -ir; dy <= ir; dy++ {
				for dz := -ir; dz <= ir; dz++ {
					if float64(dx*dx+dy*dy+dz*dz) <= r2 {
						write(req.Pos.Add(Vec3i{dx, dy, dz}))
					}
				}
			}
		}
	}

	if len(touched) == 0 {
		return nil
	}

	out := make([]ChunkCoord, 0, len(touched))
	for c := range touched {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].Z < out[j].Z
	})

	for _, c := range out {
		w.enqueueMesh(c, true)
		for _, nb := range c.FaceNeighbors() {
			if w.store.Get(nb) == nil {
				continue
			}
			w.store.MarkDirty(nb)
			w.enqueueMesh(nb, true)
		}
	}
	return out
}

// RemoveAt is a convenience for single-voxel removal.
func (w *World) RemoveAt(p Vec3i) []ChunkCoord {
	return w.ApplyEdit(EditRequest{Pos: p, Shape: BrushBall, Size: 0, Type: voxel.Air})
}
