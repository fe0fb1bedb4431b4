package ws

import (
	"encoding/json"
	"log"
	"sync"

	"voxelforge.dev/internal/protocol"
	"voxelforge.dev/internal/sim/mesh"
	"voxelforge.dev/internal/sim/world"
)

// Hub fans mesh updates out to the connected clients. It is the world's
// mesh consumer: MeshUpdated and MeshRemoved arrive on the world loop
// goroutine, which may borrow the chunk store for the duration of the call;
// everything else arrives on connection goroutines, so the client set and
// mesh cache sit behind a mutex.
type Hub struct {
	source mesh.Source
	tick   func() uint64
	log    *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	// meshes caches the encoded MESH message per resident chunk so a client
	// joining mid-session receives the current world without a remesh.
	meshes map[world.ChunkCoord][]byte
}

type client struct {
	out chan []byte
}

func NewHub(source mesh.Source, tick func() uint64, logger *log.Logger) *Hub {
	return &Hub{
		source:  source,
		tick:    tick,
		log:     logger,
		clients: make(map[*client]struct{}),
		meshes:  make(map[world.ChunkCoord][]byte),
	}
}

// MeshUpdated rebuilds the chunk's quad set and broadcasts it.
func (h *Hub) MeshUpdated(c world.ChunkCoord) {
	m := mesh.Build(h.source, c)
	b, err := json.Marshal(protocol.MeshMsg{
		Type:            protocol.TypeMesh,
		ProtocolVersion: protocol.Version,
		ServerTick:      h.tick(),
		Mesh:            *m,
	})
	if err != nil {
		h.log.Printf("ws: encode mesh %v: %v", c, err)
		return
	}

	h.mu.Lock()
	h.meshes[c] = b
	h.broadcastLocked(b)
	h.mu.Unlock()
}

// MeshRemoved drops the cached mesh and tells clients to discard theirs.
func (h *Hub) MeshRemoved(c world.ChunkCoord) {
	b, err := json.Marshal(protocol.MeshRemoveMsg{
		Type:            protocol.TypeMeshRemove,
		ProtocolVersion: protocol.Version,
		ServerTick:      h.tick(),
		Coord:           c,
	})
	if err != nil {
		h.log.Printf("ws: encode mesh remove %v: %v", c, err)
		return
	}

	h.mu.Lock()
	delete(h.meshes, c)
	h.broadcastLocked(b)
	h.mu.Unlock()
}

// broadcastLocked enqueues a frame on every client. A client whose out
// channel is full is dropped rather than allowed to stall the world loop;
// its writer goroutine notices the closed channel and ends the connection.
func (h *Hub) broadcastLocked(b []byte) {
	for cl := range h.clients {
		select {
		case cl.out <- b:
		default:
			h.log.Printf("ws: dropping slow client (queue full)")
			delete(h.clients, cl)
			close(cl.out)
		}
	}
}

// register adds a client and queues the cached meshes as its initial state.
func (h *Hub) register(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cl] = struct{}{}
	for _, b := range h.meshes {
		select {
		case cl.out <- b:
		default:
			// The initial snapshot alone overflowed the queue; the client
			// asked for less than one world's worth of buffering.
			h.log.Printf("ws: client queue too small for world snapshot")
			delete(h.clients, cl)
			close(cl.out)
			return
		}
	}
}

// send enqueues one frame for a single client. The out channel is only ever
// closed under the hub mutex while the client leaves the map, so checking
// membership here makes the send safe from any goroutine.
func (h *Hub) send(cl *client, b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; !ok {
		return
	}
	select {
	case cl.out <- b:
	default:
		// Too backed up even for a single frame; the next broadcast drops it.
	}
}

// unregister removes a client. Safe to call after the hub already dropped it.
func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.out)
	}
}

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
