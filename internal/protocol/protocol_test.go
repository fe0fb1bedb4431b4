package protocol

import (
	"encoding/json"
	"testing"

	"voxelforge.dev/internal/sim/mesh"
	"voxelforge.dev/internal/sim/voxel"
	"voxelforge.dev/internal/sim/world"
)

func TestDecodeBaseRoutesByType(t *testing.T) {
	b, err := DecodeBase([]byte(`{"type":"POSE","protocol_version":"1.0","pos":[1,2,3]}`))
	if err != nil {
		t.Fatalf("decode base: %v", err)
	}
	if b.Type != TypePose {
		t.Fatalf("type = %q, want POSE", b.Type)
	}
}

func TestValidateInboundAcceptsWellFormed(t *testing.T) {
	cases := []struct {
		msgType string
		raw     string
	}{
		{TypeHello, `{"type":"HELLO","protocol_version":"1.0","client_name":"viewer"}`},
		{TypePose, `{"type":"POSE","protocol_version":"1.0","pos":[10,-4,200]}`},
		{TypeEdit, `{"type":"EDIT","protocol_version":"1.0","pos":[0,16,0],"shape":"ball","size":2.5,"block":"stone"}`},
		{TypeEdit, `{"type":"EDIT","protocol_version":"1.0","pos":[0,0,0],"shape":"cube","size":1,"block":"air"}`},
	}
	for _, tc := range cases {
		if err := ValidateInbound(tc.msgType, []byte(tc.raw)); err != nil {
			t.Errorf("%s rejected: %v", tc.msgType, err)
		}
	}
}

func TestValidateInboundRejectsMalformed(t *testing.T) {
	cases := []struct {
		name    string
		msgType string
		raw     string
	}{
		{"pose missing coords", TypePose, `{"type":"POSE","pos":[1,2]}`},
		{"pose float coords", TypePose, `{"type":"POSE","pos":[1.5,2,3]}`},
		{"edit bad shape", TypeEdit, `{"type":"EDIT","pos":[0,0,0],"shape":"cone","size":1,"block":"stone"}`},
		{"edit negative size", TypeEdit, `{"type":"EDIT","pos":[0,0,0],"shape":"ball","size":-1,"block":"stone"}`},
		{"edit missing block", TypeEdit, `{"type":"EDIT","pos":[0,0,0],"shape":"ball","size":1}`},
		{"edit extra field", TypeEdit, `{"type":"EDIT","pos":[0,0,0],"shape":"ball","size":1,"block":"stone","admin":true}`},
		{"unknown type", "TELEPORT", `{"type":"TELEPORT"}`},
		{"not json", TypePose, `pose 1 2 3`},
	}
	for _, tc := range cases {
		if err := ValidateInbound(tc.msgType, []byte(tc.raw)); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}

func TestMeshMsgWireShape(t *testing.T) {
	msg := MeshMsg{
		Type:            TypeMesh,
		ProtocolVersion: Version,
		ServerTick:      42,
		Mesh: mesh.ChunkMesh{
			Coord: world.ChunkCoord{X: -1, Y: 0, Z: 2},
			Opaque: []mesh.Quad{
				{Type: voxel.Stone, Dir: mesh.YPos, Layer: 7, U0: 0, V0: 0, DU: 8, DV: 8},
			},
		},
	}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := got["mesh"].(map[string]any)
	if m["coord"].(map[string]any)["x"].(float64) != -1 {
		t.Fatalf("coord not in wire shape: %s", b)
	}
	if _, ok := m["transparent"]; ok {
		t.Fatalf("empty transparent pass should be omitted: %s", b)
	}
	quad := m["opaque"].([]any)[0].(map[string]any)
	for _, key := range []string{"t", "d", "w", "u", "v", "du", "dv"} {
		if _, ok := quad[key]; !ok {
			t.Fatalf("quad missing %q: %s", key, b)
		}
	}
}

func TestIsKnownCode(t *testing.T) {
	if !IsKnownCode(ErrUnknownBlock) || !IsKnownCode("") {
		t.Fatalf("known codes rejected")
	}
	if IsKnownCode("E_MADE_UP") {
		t.Fatalf("unknown code accepted")
	}
}
