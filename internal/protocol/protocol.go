// Package protocol defines the JSON wire messages exchanged between the
// world server and its clients, plus schema validation for the inbound ones.
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello      = "HELLO"
	TypeWelcome    = "WELCOME"
	TypeMesh       = "MESH"
	TypeMeshRemove = "MESH_REMOVE"
	TypePose       = "POSE"
	TypeEdit       = "EDIT"
	TypeError      = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
