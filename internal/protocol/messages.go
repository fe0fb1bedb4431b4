package protocol

import (
	"voxelforge.dev/internal/sim/mesh"
	"voxelforge.dev/internal/sim/world"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	WorldParams     WorldParams    `json:"world_params"`
	BlockPalette    []PaletteEntry `json:"block_palette"`
}

// WorldParams carries everything a client needs to interpret mesh and
// coordinate data: the chunk edge length fixes the local-coordinate space,
// the seed identifies the terrain.
type WorldParams struct {
	TickRateHz     int   `json:"tick_rate_hz"`
	ChunkSize      int   `json:"chunk_size"`
	RenderDistance int   `json:"render_distance"`
	UnloadDistance int   `json:"unload_distance"`
	Seed           int64 `json:"seed"`
	SeaLevel       int   `json:"sea_level"`
}

// PaletteEntry describes one voxel type for client-side rendering.
type PaletteEntry struct {
	ID          uint8      `json:"id"`
	Name        string     `json:"name"`
	Solid       bool       `json:"solid"`
	Transparent bool       `json:"transparent"`
	Color       [4]float32 `json:"color"`
}

// MESH (server -> client): the full quad set for one chunk. Sent when a
// chunk is first meshed and again after every remesh; the client replaces
// whatever it held for that coordinate.
type MeshMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	ServerTick      uint64         `json:"server_tick"`
	Mesh            mesh.ChunkMesh `json:"mesh"`
}

// MESH_REMOVE (server -> client): the chunk unloaded; drop its geometry.
type MeshRemoveMsg struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	ServerTick      uint64           `json:"server_tick"`
	Coord           world.ChunkCoord `json:"coord"`
}

// POSE (client -> server): the streaming reference position.
type PoseMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Pos             [3]int `json:"pos"`
}

// EDIT (client -> server): one brush application. Block names the voxel
// type by its palette name; "air" removes.
type EditMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Pos             [3]int  `json:"pos"`
	Shape           string  `json:"shape"`
	Size            float64 `json:"size"`
	Block           string  `json:"block"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
