package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Inbound messages cross a trust boundary, so they are schema-validated
// before decoding into typed structs. Outbound messages are our own and are
// covered by tests instead.

const helloSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "protocol_version"],
  "properties": {
    "type": {"const": "HELLO"},
    "protocol_version": {"type": "string"},
    "client_name": {"type": "string", "maxLength": 64}
  },
  "additionalProperties": false
}`

const poseSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "pos"],
  "properties": {
    "type": {"const": "POSE"},
    "protocol_version": {"type": "string"},
    "pos": {
      "type": "array",
      "items": {"type": "integer"},
      "minItems": 3,
      "maxItems": 3
    }
  },
  "additionalProperties": false
}`

const editSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "pos", "shape", "size", "block"],
  "properties": {
    "type": {"const": "EDIT"},
    "protocol_version": {"type": "string"},
    "pos": {
      "type": "array",
      "items": {"type": "integer"},
      "minItems": 3,
      "maxItems": 3
    },
    "shape": {"enum": ["ball", "cube"]},
    "size": {"type": "number", "minimum": 0},
    "block": {"type": "string", "minLength": 1, "maxLength": 32}
  },
  "additionalProperties": false
}`

var inboundSchemas map[string]*jsonschema.Schema

func init() {
	compile := func(name, src string) *jsonschema.Schema {
		s, err := jsonschema.CompileString(name+".schema.json", src)
		if err != nil {
			panic(fmt.Sprintf("protocol: compile %s schema: %v", name, err))
		}
		return s
	}
	inboundSchemas = map[string]*jsonschema.Schema{
		TypeHello: compile("hello", helloSchemaJSON),
		TypePose:  compile("pose", poseSchemaJSON),
		TypeEdit:  compile("edit", editSchemaJSON),
	}
}

// ValidateInbound checks a raw client message of a known inbound type
// against its schema. Unknown types are rejected outright.
func ValidateInbound(msgType string, raw []byte) error {
	s, ok := inboundSchemas[msgType]
	if !ok {
		return fmt.Errorf("unknown inbound message type %q", msgType)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode %s: %w", msgType, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("validate %s: %w", msgType, err)
	}
	return nil
}
