package mesh

import (
	"voxelforge.dev/internal/sim/voxel"
	"voxelforge.dev/internal/sim/world"
)

// Build meshes one chunk. For each of the six directions it builds a 2-D
// visibility mask per voxel slab and greedily merges same-type cells into
// maximal rectangles. Output is deterministic: identical voxel grids
// (including neighbor state) always yield the identical quad sequence.
func Build(src Source, coord world.ChunkCoord) *ChunkMesh {
	m := &ChunkMesh{Coord: coord}
	ch := src.Get(coord)
	if ch == nil {
		return m
	}

	for dir := XPos; dir <= ZNeg; dir++ {
		buildDirection(src, ch, dir, opaqueFaceVisible, &m.Opaque)
	}
	for dir := XPos; dir <= ZNeg; dir++ {
		buildDirection(src, ch, dir, transparentFaceVisible, &m.Transparent)
	}
	return m
}

// opaqueFaceVisible: the face of a solid voxel shows whenever the voxel on
// the far side is transparent (air, water, leaves, or a missing neighbor).
func opaqueFaceVisible(near, far voxel.Type) bool {
	return near.Solid() && far.Transparent()
}

// transparentFaceVisible: non-solid surfaces (water) show only against air,
// so no internal faces are emitted inside a water body.
func transparentFaceVisible(near, far voxel.Type) bool {
	return near != voxel.Air && !near.Solid() && far == voxel.Air
}

func buildDirection(src Source, ch *world.ChunkData, dir Direction, visible func(near, far voxel.Type) bool, out *[]Quad) {
	n := ch.Size
	d := dir.Axis()
	u := (d + 1) % 3
	v := (d + 2) % 3
	sign := dir.Sign()

	// Neighbor chunk on the far side of the boundary slab, fetched once per
	// direction. Absent neighbors read as all-Air.
	var neighbor *world.ChunkData
	{
		nc := ch.Coord
		switch d {
		case 0:
			nc.X += sign
		case 1:
			nc.Y += sign
		case 2:
			nc.Z += sign
		}
		neighbor = src.Get(nc)
	}

	mask := make([]voxel.Type, n*n)

	for w := 0; w < n; w++ {
		// Mask build: a cell holds the near voxel's type when its face in
		// this direction is visible, Air otherwise.
		for i := range mask {
			mask[i] = voxel.Air
		}
		boundary := (sign > 0 && w == n-1) || (sign < 0 && w == 0)

		for vv := 0; vv < n; vv++ {
			for uu := 0; uu < n; uu++ {
				var cell [3]int
				cell[d] = w
				cell[u] = uu
				cell[v] = vv

				near := ch.Get(cell[0], cell[1], cell[2])
				if near == voxel.Air {
					continue
				}

				var far voxel.Type
				if !boundary {
					var fc [3]int = cell
					fc[d] += sign
					far = ch.Get(fc[0], fc[1], fc[2])
				} else if neighbor != nil {
					var fc [3]int = cell
					if sign > 0 {
						fc[d] = 0
					} else {
						fc[d] = n - 1
					}
					far = neighbor.Get(fc[0], fc[1], fc[2])
				} // else: absent neighbor is Air

				if visible(near, far) {
					mask[vv*n+uu] = near
				}
			}
		}

		// Greedy merge: scan row-major; grow each rectangle rightward along
		// U while the type matches, then downward along V while every cell
		// in the candidate row matches. Consumed cells are cleared so every
		// visible face lands in exactly one quad.
		for i := 0; i < n*n; i++ {
			t := mask[i]
			if t == voxel.Air {
				continue
			}
			u0 := i % n
			v0 := i / n

			du := 1
			for u0+du < n && mask[v0*n+u0+du] == t {
				du++
			}

			dv := 1
		grow:
			for v0+dv < n {
				for x := u0; x < u0+du; x++ {
					if mask[(v0+dv)*n+x] != t {
						break grow
					}
				}
				dv++
			}

			for y := v0; y < v0+dv; y++ {
				for x := u0; x < u0+du; x++ {
					mask[y*n+x] = voxel.Air
				}
			}

			*out = append(*out, Quad{
				Type:  t,
				Dir:   dir,
				Layer: w,
				U0:    u0,
				V0:    v0,
				DU:    du,
				DV:    dv,
			})
		}
	}
}
