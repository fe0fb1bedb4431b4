package gen

import (
	"voxelforge.dev/internal/sim/tuning"
	"voxelforge.dev/internal/sim/voxel"
)

// HeightField is the deterministic terrain function. Same seed and tuning
// always produce the same column heights; chunk generation and tests both
// rely on that.
type HeightField struct {
	noise *Noise
	cfg   tuning.Terrain
}

func NewHeightField(seed int64, cfg tuning.Terrain) *HeightField {
	return &HeightField{
		noise: NewNoise(seed),
		cfg:   cfg,
	}
}

// HeightAt returns the terrain surface height (world Y of the topmost
// non-air voxel) for a world (x, z) column.
func (h *HeightField) HeightAt(wx, wz int) int {
	v := h.noise.OctaveNoise2D(
		float64(wx)*h.cfg.NoiseScale,
		float64(wz)*h.cfg.NoiseScale,
		h.cfg.Octaves,
		h.cfg.Persistence,
	)
	return h.cfg.HeightBase + int(v*float64(h.cfg.HeightAmp))
}

// ColumnVoxel applies the layering policy for one cell of a column whose
// surface is at height: grass on top (sand under water), dirt below,
// stone down from there. Air above the surface fills with water up to
// sea level.
func (h *HeightField) ColumnVoxel(wy, height int) voxel.Type {
	if wy > height {
		if wy <= h.cfg.SeaLevel {
			return voxel.Water
		}
		return voxel.Air
	}
	if wy == height {
		if height < h.cfg.SeaLevel {
			return voxel.Sand
		}
		return voxel.Grass
	}
	if wy >= height-h.cfg.DirtDepth {
		return voxel.Dirt
	}
	return voxel.Stone
}
