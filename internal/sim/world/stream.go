package world

import "sort"

// Streaming controller. Per chunk coordinate the lifecycle is implicit in
// store membership and queue presence:
// absent -> queued(load) -> resident -> unloaded -> absent.
// UNLOAD_DISTANCE > RENDER_DISTANCE strictly, so a chunk can never be
// loaded and unloaded in the same tick.

// refreshDesired enqueues a load for every coordinate within
// RenderDistance (Chebyshev) of the reference chunk that is neither
// resident nor already queued.
func (w *World) refreshDesired() {
	r := w.cfg.RenderDistance
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				c := ChunkCoord{w.refChunk.X + dx, w.refChunk.Y + dy, w.refChunk.Z + dz}
				if !w.store.InBounds(c) {
					continue
				}
				if w.store.Get(c) != nil {
					continue
				}
				if _, ok := w.loadQueued[c]; ok {
					continue
				}
				w.loadQueue = append(w.loadQueue, c)
				w.loadQueued[c] = struct{}{}
			}
		}
	}
}

// sweepUnloads evicts every resident chunk beyond UnloadDistance. Unloads
// are not budgeted: eviction is cheap relative to generation, and the sweep
// is bounded by the resident set size.
func (w *World) sweepUnloads() {
	for _, c := range w.store.Coords() {
		if Chebyshev(c, w.refChunk) <= w.cfg.UnloadDistance {
			continue
		}
		if w.store.Remove(c) && w.consumer != nil {
			w.consumer.MeshRemoved(c)
		}
	}
}

// drainLoads applies up to MaxLoadsPerTick pending loads. The queue is
// distance-sorted each tick (closest first, stable so equal distances keep
// FIFO order). A queued coordinate that has left the desired set is dropped
// without being generated and does not consume budget.
func (w *World) drainLoads() {
	if len(w.loadQueue) == 0 {
		return
	}
	if w.haveRef {
		sort.SliceStable(w.loadQueue, func(i, j int) bool {
			return Chebyshev(w.loadQueue[i], w.refChunk) < Chebyshev(w.loadQueue[j], w.refChunk)
		})
	}

	loaded := 0
	for len(w.loadQueue) > 0 && loaded < w.cfg.MaxLoadsPerTick {
		c := w.loadQueue[0]
		w.loadQueue = w.loadQueue[1:]
		delete(w.loadQueued, c)

		if w.haveRef && Chebyshev(c, w.refChunk) > w.cfg.RenderDistance {
			continue // left the desired set while queued
		}
		if w.store.Get(c) != nil {
			continue
		}

		ch := w.store.loadOrGenerate(c)
		if !w.store.Insert(c, ch) {
			continue
		}
		w.enqueueMesh(c, false)
		loaded++
	}
}

// drainMeshes hands up to MaxMeshesPerTick dirty chunks to the consumer,
// priority (edited) chunks first.
func (w *World) drainMeshes() {
	budget := w.cfg.MaxMeshesPerTick
	for budget > 0 {
		c, ok := w.popMesh()
		if !ok {
			return
		}
		ch := w.store.Get(c)
		if ch == nil || !ch.MeshDirty {
			continue // unloaded or already remeshed; no budget spent
		}
		ch.MeshDirty = false
		if w.consumer != nil {
			w.consumer.MeshUpdated(c)
		}
		budget--
	}
}

func (w *World) popMesh() (ChunkCoord, bool) {
	if len(w.priorityQueue) > 0 {
		c := w.priorityQueue[0]
		w.priorityQueue = w.priorityQueue[1:]
		delete(w.prioQueued, c)
		return c, true
	}
	if len(w.meshQueue) > 0 {
		c := w.meshQueue[0]
		w.meshQueue = w.meshQueue[1:]
		delete(w.meshQueued, c)
		return c, true
	}
	return ChunkCoord{}, false
}

func (w *World) enqueueMesh(c ChunkCoord, priority bool) {
	if priority {
		if _, ok := w.prioQueued[c]; ok {
			return
		}
		w.priorityQueue = append(w.priorityQueue, c)
		w.prioQueued[c] = struct{}{}
		return
	}
	if _, ok := w.meshQueued[c]; ok {
		return
	}
	if _, ok := w.prioQueued[c]; ok {
		return
	}
	w.meshQueue = append(w.meshQueue, c)
	w.meshQueued[c] = struct{}{}
}
