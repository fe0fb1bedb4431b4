package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds every knob the world core reads. Values come from tuning.yaml;
// missing fields fall back to Defaults(). Validate must pass before any world
// state is created.
type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`

	ChunkSize        int   `yaml:"chunk_size"`
	RenderDistance   int   `yaml:"render_distance"`
	UnloadDistance   int   `yaml:"unload_distance"`
	MaxLoadsPerTick  int   `yaml:"max_loads_per_tick"`
	MaxMeshesPerTick int   `yaml:"max_meshes_per_tick"`
	WorldBoundaryR   int   `yaml:"world_boundary_r"`
	Seed             int64 `yaml:"seed"`

	Terrain Terrain `yaml:"terrain"`
	Edit    Edit    `yaml:"edit"`
}

// Terrain shapes the deterministic height field and its layering policy.
type Terrain struct {
	SeaLevel    int     `yaml:"sea_level"`
	HeightBase  int     `yaml:"height_base"`
	HeightAmp   int     `yaml:"height_amp"`
	NoiseScale  float64 `yaml:"noise_scale"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	DirtDepth   int     `yaml:"dirt_depth"`
}

type Edit struct {
	ReachDistance   float64 `yaml:"reach_distance"`
	MaxBrushRadius  float64 `yaml:"max_brush_radius"`
	RaycastStepSize float64 `yaml:"raycast_step_size"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:       20,
		ChunkSize:        32,
		RenderDistance:   8,
		UnloadDistance:   12,
		MaxLoadsPerTick:  2,
		MaxMeshesPerTick: 4,
		WorldBoundaryR:   0,
		Seed:             1337,
		Terrain: Terrain{
			SeaLevel:    8,
			HeightBase:  16,
			HeightAmp:   24,
			NoiseScale:  0.01,
			Octaves:     4,
			Persistence: 0.5,
			DirtDepth:   3,
		},
		Edit: Edit{
			ReachDistance:   8.0,
			MaxBrushRadius:  4.0,
			RaycastStepSize: 0.1,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Validate enforces the startup invariants. Any failure here is fatal:
// a world must never be created from a broken configuration.
func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be positive, got %d", t.TickRateHz)
	}
	if t.ChunkSize <= 0 || t.ChunkSize&(t.ChunkSize-1) != 0 {
		return fmt.Errorf("chunk_size must be a positive power of two, got %d", t.ChunkSize)
	}
	if t.RenderDistance <= 0 {
		return fmt.Errorf("render_distance must be positive, got %d", t.RenderDistance)
	}
	if t.UnloadDistance <= t.RenderDistance {
		return fmt.Errorf("unload_distance (%d) must be strictly greater than render_distance (%d)",
			t.UnloadDistance, t.RenderDistance)
	}
	if t.MaxLoadsPerTick <= 0 {
		return fmt.Errorf("max_loads_per_tick must be positive, got %d", t.MaxLoadsPerTick)
	}
	if t.MaxMeshesPerTick <= 0 {
		return fmt.Errorf("max_meshes_per_tick must be positive, got %d", t.MaxMeshesPerTick)
	}
	if t.WorldBoundaryR < 0 {
		return fmt.Errorf("world_boundary_r must be >= 0, got %d", t.WorldBoundaryR)
	}
	if t.Terrain.NoiseScale <= 0 {
		return fmt.Errorf("terrain.noise_scale must be positive, got %g", t.Terrain.NoiseScale)
	}
	if t.Terrain.Octaves <= 0 {
		return fmt.Errorf("terrain.octaves must be positive, got %d", t.Terrain.Octaves)
	}
	if t.Terrain.DirtDepth < 0 {
		return fmt.Errorf("terrain.dirt_depth must be >= 0, got %d", t.Terrain.DirtDepth)
	}
	if t.Edit.ReachDistance <= 0 {
		return fmt.Errorf("edit.reach_distance must be positive, got %g", t.Edit.ReachDistance)
	}
	if t.Edit.MaxBrushRadius <= 0 {
		return fmt.Errorf("edit.max_brush_radius must be positive, got %g", t.Edit.MaxBrushRadius)
	}
	if t.Edit.RaycastStepSize <= 0 {
		return fmt.Errorf("edit.raycast_step_size must be positive, got %g", t.Edit.RaycastStepSize)
	}
	return nil
}
