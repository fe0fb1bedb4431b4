// Package ws exposes the world over a websocket: mesh updates stream out,
// pose and edit intents stream in.
package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"voxelforge.dev/internal/protocol"
	"voxelforge.dev/internal/sim/voxel"
	"voxelforge.dev/internal/sim/world"
)

const defaultQueueSize = 4096

type Server struct {
	world *world.World
	hub   *Hub
	log   *log.Logger

	sessions atomic.Uint64
	upgrader websocket.Upgrader
}

func NewServer(w *world.World, hub *Hub, logger *log.Logger) *Server {
	return &Server{
		world: w,
		hub:   hub,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		cl, ok := s.handshake(conn)
		if !ok {
			return
		}
		defer s.hub.unregister(cl)

		done := make(chan struct{})

		// Writer goroutine. Ends when the hub closes the out channel or a
		// write fails.
		go func() {
			defer close(done)
			for b := range cl.out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			s.handleInbound(cl, msg)
		}

		s.hub.unregister(cl)
		<-done
	}
}

// handleInbound runs on the reader goroutine. The writer goroutine owns the
// connection for writes, so replies go through the client's out queue.
func (s *Server) handleInbound(cl *client, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		s.sendError(cl, protocol.ErrProtoBadRequest, "not a protocol message")
		return
	}
	if err := protocol.ValidateInbound(base.Type, msg); err != nil {
		s.sendError(cl, protocol.ErrProtoBadRequest, err.Error())
		return
	}

	switch base.Type {
	case protocol.TypePose:
		var pose protocol.PoseMsg
		if err := json.Unmarshal(msg, &pose); err != nil {
			return
		}
		s.world.PoseInbox() <- world.Vec3i{X: pose.Pos[0], Y: pose.Pos[1], Z: pose.Pos[2]}

	case protocol.TypeEdit:
		var edit protocol.EditMsg
		if err := json.Unmarshal(msg, &edit); err != nil {
			return
		}
		block, ok := voxel.ByName(edit.Block)
		if !ok {
			s.sendError(cl, protocol.ErrUnknownBlock, fmt.Sprintf("no block named %q", edit.Block))
			return
		}
		s.world.EditInbox() <- world.EditRequest{
			Pos:   world.Vec3i{X: edit.Pos[0], Y: edit.Pos[1], Z: edit.Pos[2]},
			Shape: world.BrushShape(edit.Shape),
			Size:  edit.Size,
			Type:  block,
		}

	case protocol.TypeHello:
		// A second HELLO after the handshake is a client bug, not a crime.
		s.sendError(cl, protocol.ErrBadRequest, "already joined")
	}
}

func (s *Server) handshake(conn *websocket.Conn) (*client, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return nil, false
	}
	if err := protocol.ValidateInbound(protocol.TypeHello, msg); err != nil {
		closePolicy(conn, "malformed HELLO")
		return nil, false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil, false
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return nil, false
	}

	cfg := s.world.Config()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       fmt.Sprintf("S%d", s.sessions.Add(1)),
		WorldParams: protocol.WorldParams{
			TickRateHz:     cfg.TickRateHz,
			ChunkSize:      cfg.ChunkSize,
			RenderDistance: cfg.RenderDistance,
			UnloadDistance: cfg.UnloadDistance,
			Seed:           cfg.Seed,
			SeaLevel:       cfg.Terrain.SeaLevel,
		},
		BlockPalette: BuildPalette(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return nil, false
	}

	cl := &client{out: make(chan []byte, defaultQueueSize)}
	s.hub.register(cl)
	return cl, true
}

// BuildPalette enumerates the voxel catalog for the WELCOME message.
func BuildPalette() []protocol.PaletteEntry {
	entries := make([]protocol.PaletteEntry, 0, voxel.Count())
	for i := 0; i < voxel.Count(); i++ {
		t := voxel.Type(i)
		entries = append(entries, protocol.PaletteEntry{
			ID:          uint8(t),
			Name:        t.Name(),
			Solid:       t.Solid(),
			Transparent: t.Transparent(),
			Color:       t.Color(),
		})
	}
	return entries
}

func (s *Server) sendError(cl *client, code, message string) {
	b, err := json.Marshal(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
	if err != nil {
		return
	}
	s.hub.send(cl, b)
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
