// Package voxel defines the closed set of voxel types and their derived
// rendering attributes. Behavior is data: a fixed table indexed by the type
// tag, resolved once at package init.
package voxel

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Type tags one voxel. The zero value is Air.
type Type uint8

const (
	Air Type = iota
	Stone
	Dirt
	Grass
	Sand
	Water
	Wood
	Leaves

	typeCount
)

// Attributes are the derived per-type properties. Air is never solid.
type Attributes struct {
	Name        string
	Solid       bool
	Transparent bool
	Color       [4]float32 // linear RGBA
}

// def is the authored form: a hex color plus an explicit alpha, converted to
// RGBA at init. Keeping authoring in hex keeps the table readable.
type def struct {
	name        string
	hex         string
	alpha       float32
	solid       bool
	transparent bool
}

var defs = [typeCount]def{
	Air:    {name: "air", hex: "#000000", alpha: 0.0, solid: false, transparent: true},
	Stone:  {name: "stone", hex: "#7d7d7d", alpha: 1.0, solid: true, transparent: false},
	Dirt:   {name: "dirt", hex: "#79553a", alpha: 1.0, solid: true, transparent: false},
	Grass:  {name: "grass", hex: "#5d9e3f", alpha: 1.0, solid: true, transparent: false},
	Sand:   {name: "sand", hex: "#dbd28b", alpha: 1.0, solid: true, transparent: false},
	Water:  {name: "water", hex: "#3366cc", alpha: 0.6, solid: false, transparent: true},
	Wood:   {name: "wood", hex: "#6b4f2a", alpha: 1.0, solid: true, transparent: false},
	Leaves: {name: "leaves", hex: "#3c7a2e", alpha: 1.0, solid: true, transparent: true},
}

var (
	attrs  [typeCount]Attributes
	byName map[string]Type
)

func init() {
	byName = make(map[string]Type, typeCount)
	for t := Type(0); t < typeCount; t++ {
		d := defs[t]
		c, err := colorful.Hex(d.hex)
		if err != nil {
			panic(fmt.Sprintf("voxel: bad color for %s: %v", d.name, err))
		}
		attrs[t] = Attributes{
			Name:        d.name,
			Solid:       d.solid,
			Transparent: d.transparent,
			Color:       [4]float32{float32(c.R), float32(c.G), float32(c.B), d.alpha},
		}
		byName[d.name] = t
	}
	if attrs[Air].Solid {
		panic("voxel: air must not be solid")
	}
}

// Count reports how many voxel types exist.
func Count() int { return int(typeCount) }

func (t Type) Valid() bool { return t < typeCount }

func (t Type) Name() string {
	if !t.Valid() {
		return "unknown"
	}
	return attrs[t].Name
}

func (t Type) Solid() bool {
	if !t.Valid() {
		return false
	}
	return attrs[t].Solid
}

func (t Type) Transparent() bool {
	if !t.Valid() {
		return true
	}
	return attrs[t].Transparent
}

// Color returns the display RGBA. Unknown tags render bright magenta so a
// palette bug is visible instead of silent.
func (t Type) Color() [4]float32 {
	if !t.Valid() {
		return [4]float32{1, 0, 1, 1}
	}
	return attrs[t].Color
}

// ByName resolves a type tag from its wire name.
func ByName(name string) (Type, bool) {
	t, ok := byName[name]
	return t, ok
}
