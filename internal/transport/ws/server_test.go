package ws

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelforge.dev/internal/protocol"
	"voxelforge.dev/internal/sim/tuning"
	"voxelforge.dev/internal/sim/voxel"
	"voxelforge.dev/internal/sim/world"
)

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[ws-test] ", 0)
}

// stubSource serves canned chunks to the mesher.
type stubSource map[world.ChunkCoord]*world.ChunkData

func (s stubSource) Get(c world.ChunkCoord) *world.ChunkData { return s[c] }

func soloChunk(c world.ChunkCoord) stubSource {
	ch := world.NewChunkData(c, 4)
	ch.Set(1, 1, 1, voxel.Stone)
	return stubSource{c: ch}
}

func TestHubBroadcastsMeshToClients(t *testing.T) {
	c := world.ChunkCoord{X: 1, Y: 0, Z: -2}
	h := NewHub(soloChunk(c), func() uint64 { return 7 }, testLogger())

	cl := &client{out: make(chan []byte, 8)}
	h.register(cl)
	h.MeshUpdated(c)

	var msg protocol.MeshMsg
	if err := json.Unmarshal(<-cl.out, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != protocol.TypeMesh || msg.ServerTick != 7 {
		t.Fatalf("frame = %+v", msg)
	}
	if msg.Mesh.Coord != c || len(msg.Mesh.Opaque) != 6 {
		t.Fatalf("mesh = %+v", msg.Mesh)
	}
}

func TestHubSnapshotOnRegister(t *testing.T) {
	c := world.ChunkCoord{}
	h := NewHub(soloChunk(c), func() uint64 { return 0 }, testLogger())
	h.MeshUpdated(c) // no clients yet; cached only

	late := &client{out: make(chan []byte, 8)}
	h.register(late)

	select {
	case b := <-late.out:
		var msg protocol.MeshMsg
		if err := json.Unmarshal(b, &msg); err != nil || msg.Type != protocol.TypeMesh {
			t.Fatalf("snapshot frame = %s", b)
		}
	default:
		t.Fatalf("late client got no snapshot")
	}
}

func TestHubRemoveDropsCacheAndNotifies(t *testing.T) {
	c := world.ChunkCoord{}
	h := NewHub(soloChunk(c), func() uint64 { return 0 }, testLogger())
	cl := &client{out: make(chan []byte, 8)}
	h.register(cl)

	h.MeshUpdated(c)
	<-cl.out
	h.MeshRemoved(c)

	var msg protocol.MeshRemoveMsg
	if err := json.Unmarshal(<-cl.out, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != protocol.TypeMeshRemove || msg.Coord != c {
		t.Fatalf("frame = %+v", msg)
	}

	// A client joining after the removal sees no stale mesh.
	late := &client{out: make(chan []byte, 8)}
	h.register(late)
	select {
	case b := <-late.out:
		t.Fatalf("stale snapshot frame: %s", b)
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	c := world.ChunkCoord{}
	h := NewHub(soloChunk(c), func() uint64 { return 0 }, testLogger())
	slow := &client{out: make(chan []byte)} // no buffer, nobody reading
	h.register(slow)

	h.MeshUpdated(c)
	if h.clientCount() != 0 {
		t.Fatalf("slow client still registered")
	}
	if _, open := <-slow.out; open {
		t.Fatalf("dropped client's queue left open")
	}
	// Unregister after the drop must not panic.
	h.unregister(slow)
}

func TestBuildPalette(t *testing.T) {
	p := BuildPalette()
	if len(p) != voxel.Count() {
		t.Fatalf("palette has %d entries, want %d", len(p), voxel.Count())
	}
	if p[0].Name != "air" || p[0].Solid {
		t.Fatalf("palette[0] = %+v, want air", p[0])
	}
	for _, e := range p {
		if int(e.ID) >= voxel.Count() {
			t.Fatalf("palette id %d out of range", e.ID)
		}
	}
}

func dialTestServer(t *testing.T) (*world.World, *websocket.Conn) {
	t.Helper()
	cfg := tuning.Defaults()
	cfg.ChunkSize = 8
	cfg.RenderDistance = 1
	cfg.UnloadDistance = 2

	w, err := world.New(cfg, nil, nil, testLogger())
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	hub := NewHub(w.Store(), w.TickCount, testLogger())
	srv := httptest.NewServer(NewServer(w, hub, testLogger()).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return w, conn
}

func readFrame(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return b
}

func TestHandshakeWelcome(t *testing.T) {
	w, conn := dialTestServer(t)

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "viewer"}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(readFrame(t, conn), &welcome); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome {
		t.Fatalf("frame type = %q", welcome.Type)
	}
	cfg := w.Config()
	if welcome.WorldParams.ChunkSize != cfg.ChunkSize || welcome.WorldParams.Seed != cfg.Seed {
		t.Fatalf("world params = %+v", welcome.WorldParams)
	}
	if len(welcome.BlockPalette) != voxel.Count() {
		t.Fatalf("palette has %d entries", len(welcome.BlockPalette))
	}
}

func TestInboundValidationSendsError(t *testing.T) {
	_, conn := dialTestServer(t)

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	readFrame(t, conn) // WELCOME

	// Valid pose and edit first: neither may produce an error frame, so the
	// next frame received must be the rejection of the malformed edit.
	_ = conn.WriteJSON(protocol.PoseMsg{Type: protocol.TypePose, ProtocolVersion: protocol.Version, Pos: [3]int{0, 20, 0}})
	_ = conn.WriteJSON(protocol.EditMsg{Type: protocol.TypeEdit, ProtocolVersion: protocol.Version, Pos: [3]int{0, 10, 0}, Shape: "ball", Size: 2, Block: "stone"})
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"EDIT","pos":[0,0,0],"shape":"cone","size":1,"block":"stone"}`))

	var errMsg protocol.ErrorMsg
	if err := json.Unmarshal(readFrame(t, conn), &errMsg); err != nil {
		t.Fatalf("decode error frame: %v", err)
	}
	if errMsg.Type != protocol.TypeError || errMsg.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("frame = %+v", errMsg)
	}
}

func TestUnknownBlockRejected(t *testing.T) {
	_, conn := dialTestServer(t)

	_ = conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version})
	readFrame(t, conn) // WELCOME

	_ = conn.WriteJSON(protocol.EditMsg{Type: protocol.TypeEdit, ProtocolVersion: protocol.Version, Pos: [3]int{0, 0, 0}, Shape: "cube", Size: 1, Block: "bedrock"})

	var errMsg protocol.ErrorMsg
	if err := json.Unmarshal(readFrame(t, conn), &errMsg); err != nil {
		t.Fatalf("decode error frame: %v", err)
	}
	if errMsg.Code != protocol.ErrUnknownBlock {
		t.Fatalf("code = %q, want %q", errMsg.Code, protocol.ErrUnknownBlock)
	}
}

func TestHandshakeRejectsWrongVersion(t *testing.T) {
	_, conn := dialTestServer(t)

	_ = conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.1"})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection survived a bad protocol_version")
	}
}
