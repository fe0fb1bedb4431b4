package world

import (
	"context"
	"log"
	"time"

	"voxelforge.dev/internal/sim/tuning"
	"voxelforge.dev/internal/sim/voxel"
)

// MeshConsumer is the rendering collaborator. MeshUpdated is invoked from
// the world loop, at most MaxMeshesPerTick times per tick, once per chunk
// whose mesh must be (re)built; the consumer may borrow the chunk store
// read-only for the duration of the call. MeshRemoved fires when a chunk
// unloads.
type MeshConsumer interface {
	MeshUpdated(c ChunkCoord)
	MeshRemoved(c ChunkCoord)
}

// BrushShape selects the region affected by one edit.
type BrushShape string

const (
	BrushBall BrushShape = "ball"
	BrushCube BrushShape = "cube"
)

// EditRequest is one edit intent: write Type into every voxel of the brush
// centered at Pos. Type Air removes.
type EditRequest struct {
	Pos   Vec3i
	Shape BrushShape
	Size  float64
	Type  voxel.Type
}

// World is the single-threaded authoritative voxel world. All state is
// owned by the world loop goroutine; collaborators talk to it through the
// inbox channels or, in tests, by calling Tick directly.
type World struct {
	cfg   tuning.Tuning
	store *ChunkStore
	log   *log.Logger

	consumer MeshConsumer // may be nil

	refChunk ChunkCoord
	haveRef  bool

	loadQueue  []ChunkCoord
	loadQueued map[ChunkCoord]struct{}

	meshQueue     []ChunkCoord
	priorityQueue []ChunkCoord
	meshQueued    map[ChunkCoord]struct{}
	prioQueued    map[ChunkCoord]struct{}

	tick uint64

	pose  chan Vec3i
	edits chan EditRequest
	stop  chan struct{}
}

func New(cfg tuning.Tuning, persist Persistence, consumer MeshConsumer, logger *log.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &World{
		cfg:        cfg,
		store:      NewChunkStore(cfg, persist, logger),
		log:        logger,
		consumer:   consumer,
		loadQueued: make(map[ChunkCoord]struct{}),
		meshQueued: make(map[ChunkCoord]struct{}),
		prioQueued: make(map[ChunkCoord]struct{}),
		pose:       make(chan Vec3i, 16),
		edits:      make(chan EditRequest, 64),
		stop:       make(chan struct{}),
	}, nil
}

// SetMeshConsumer wires the rendering collaborator. Must be called before
// Run; the consumer usually needs the world's store, so it cannot exist at
// construction time.
func (w *World) SetMeshConsumer(c MeshConsumer) { w.consumer = c }

// Store exposes the chunk store for read-only borrows (meshing). Callers
// outside the world loop must not touch it while the loop runs.
func (w *World) Store() *ChunkStore { return w.store }

func (w *World) Config() tuning.Tuning { return w.cfg }

func (w *World) TickCount() uint64 { return w.tick }

// PoseInbox receives reference-position updates from the player/camera
// collaborator; the world drains it at the top of each tick.
func (w *World) PoseInbox() chan<- Vec3i { return w.pose }

// EditInbox receives edit intents from the interaction collaborator.
func (w *World) EditInbox() chan<- EditRequest { return w.edits }

// SetReferencePosition records the streaming center. Exposed for tests and
// in-process callers; the transport path goes through PoseInbox.
func (w *World) SetReferencePosition(p Vec3i) {
	c, _ := WorldToChunk(p, w.cfg.ChunkSize)
	w.refChunk = c
	w.haveRef = true
}

// Tick runs one streaming step: refresh the desired set, sweep unloads,
// apply up to MaxLoadsPerTick loads, then hand up to MaxMeshesPerTick
// chunks to the mesh consumer.
func (w *World) Tick() {
	w.tick++
	if w.haveRef {
		w.refreshDesired()
		w.sweepUnloads()
	}
	w.drainLoads()
	w.drainMeshes()
}

// Run drives the tick loop at the configured rate until the context ends.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case p := <-w.pose:
			w.SetReferencePosition(p)
		case req := <-w.edits:
			w.ApplyEdit(req)
		case <-ticker.C:
			w.drainInboxes()
			w.Tick()
		}
	}
}

// Stop ends Run from another goroutine.
func (w *World) Stop() {
	close(w.stop)
}

func (w *World) drainInboxes() {
	for {
		select {
		case p := <-w.pose:
			w.SetReferencePosition(p)
		case req := <-w.edits:
			w.ApplyEdit(req)
		default:
			return
		}
	}
}
