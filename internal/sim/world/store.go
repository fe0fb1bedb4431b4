package world

import (
	"log"
	"sort"

	"voxelforge.dev/internal/sim/tuning"
	"voxelforge.dev/internal/sim/voxel"
	genpkg "voxelforge.dev/internal/sim/world/terrain/gen"
)

// Persistence is the durable-storage collaborator. Save and Load failures
// are logged and never fatal: terrain is always regenerable. Load returns
// (nil, nil) when no saved chunk exists.
type Persistence interface {
	Save(ch *ChunkData) error
	Load(coord ChunkCoord) (*ChunkData, error)
}

// ChunkStore holds the resident chunks, keyed by chunk coordinate. It is
// mutated only from the world loop.
type ChunkStore struct {
	n         int
	boundaryR int // chunk-space Chebyshev limit from origin; 0 = unbounded
	chunks    map[ChunkCoord]*ChunkData

	gen     *genpkg.HeightField
	persist Persistence // may be nil
	log     *log.Logger
}

func NewChunkStore(cfg tuning.Tuning, persist Persistence, logger *log.Logger) *ChunkStore {
	return &ChunkStore{
		n:         cfg.ChunkSize,
		boundaryR: cfg.WorldBoundaryR,
		chunks:    make(map[ChunkCoord]*ChunkData),
		gen:       genpkg.NewHeightField(cfg.Seed, cfg.Terrain),
		persist:   persist,
		log:       logger,
	}
}

func (s *ChunkStore) ChunkSize() int { return s.n }

func (s *ChunkStore) Len() int { return len(s.chunks) }

// InBounds reports whether a chunk coordinate is representable in this
// world. Out-of-bounds coordinates are a no-op everywhere, never a crash.
func (s *ChunkStore) InBounds(c ChunkCoord) bool {
	if s.boundaryR <= 0 {
		return true
	}
	return Chebyshev(c, ChunkCoord{}) <= s.boundaryR
}

// Get returns the resident chunk for a coordinate, or nil.
func (s *ChunkStore) Get(c ChunkCoord) *ChunkData {
	return s.chunks[c]
}

// Insert adds a chunk. Inserting over a resident coordinate is an
// invariant violation: logged, and the resident chunk wins.
func (s *ChunkStore) Insert(c ChunkCoord, ch *ChunkData) bool {
	if _, ok := s.chunks[c]; ok {
		if s.log != nil {
			s.log.Printf("store: duplicate insert at %v ignored", c)
		}
		return false
	}
	s.chunks[c] = ch
	return true
}

// Remove evicts a chunk. A modified chunk is offered to the persistence
// collaborator first; mutated chunks are never silently discarded.
func (s *ChunkStore) Remove(c ChunkCoord) bool {
	ch, ok := s.chunks[c]
	if !ok {
		if s.log != nil {
			s.log.Printf("store: remove of non-resident %v ignored", c)
		}
		return false
	}
	if ch.Modified && s.persist != nil {
		if err := s.persist.Save(ch); err != nil && s.log != nil {
			s.log.Printf("store: save %v failed, dropping in-memory state: %v", c, err)
		}
	}
	delete(s.chunks, c)
	return true
}

// FlushModified saves every modified resident chunk, for shutdown. Chunks
// that save cleanly drop their modified flag; failures are logged and the
// chunk stays flagged so a retry can pick it up.
func (s *ChunkStore) FlushModified() int {
	if s.persist == nil {
		return 0
	}
	saved := 0
	for _, c := range s.Coords() {
		ch := s.chunks[c]
		if !ch.Modified {
			continue
		}
		if err := s.persist.Save(ch); err != nil {
			if s.log != nil {
				s.log.Printf("store: flush %v failed: %v", c, err)
			}
			continue
		}
		ch.Modified = false
		saved++
	}
	return saved
}

// MarkDirty flags a resident chunk for remeshing.
func (s *ChunkStore) MarkDirty(c ChunkCoord) {
	if ch, ok := s.chunks[c]; ok {
		ch.MeshDirty = true
	}
}

// Coords returns the resident coordinates in deterministic order.
func (s *ChunkStore) Coords() []ChunkCoord {
	keys := make([]ChunkCoord, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		if keys[i].Y != keys[j].Y {
			return keys[i].Y < keys[j].Y
		}
		return keys[i].Z < keys[j].Z
	})
	return keys
}

// VoxelAt reads a world position. Positions in absent or out-of-bounds
// chunks read as Air; the mesher leans on that for missing neighbors.
func (s *ChunkStore) VoxelAt(p Vec3i) voxel.Type {
	c, l := WorldToChunk(p, s.n)
	ch, ok := s.chunks[c]
	if !ok {
		return voxel.Air
	}
	return ch.Get(l.X, l.Y, l.Z)
}

// SetVoxelAt writes a world position and reports whether a resident voxel
// changed. Writes into absent chunks are a no-op.
func (s *ChunkStore) SetVoxelAt(p Vec3i, t voxel.Type) bool {
	c, l := WorldToChunk(p, s.n)
	if !s.InBounds(c) {
		return false
	}
	ch, ok := s.chunks[c]
	if !ok {
		return false
	}
	return ch.Set(l.X, l.Y, l.Z, t)
}

// loadOrGenerate produces chunk data for a coordinate: saved state when the
// persistence collaborator has it, generated terrain otherwise.
func (s *ChunkStore) loadOrGenerate(c ChunkCoord) *ChunkData {
	if s.persist != nil {
		ch, err := s.persist.Load(c)
		if err != nil {
			if s.log != nil {
				s.log.Printf("store: load %v failed, regenerating: %v", c, err)
			}
		} else if ch != nil {
			ch.MeshDirty = true
			return ch
		}
	}
	return s.Generate(c)
}

// Generate fills a fresh chunk from the deterministic height field. The
// modified flag starts false: this is the canonical generated state.
func (s *ChunkStore) Generate(c ChunkCoord) *ChunkData {
	ch := NewChunkData(c, s.n)
	origin := ChunkToWorldOrigin(c, s.n)
	for x := 0; x < s.n; x++ {
		wx := origin.X + x
		for z := 0; z < s.n; z++ {
			wz := origin.Z + z
			height := s.gen.HeightAt(wx, wz)
			for y := 0; y < s.n; y++ {
				wy := origin.Y + y
				if t := s.gen.ColumnVoxel(wy, height); t != voxel.Air {
					ch.fill(x, y, z, t)
				}
			}
		}
	}
	ch.MeshDirty = true
	return ch
}
