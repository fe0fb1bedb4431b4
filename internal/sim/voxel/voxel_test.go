package voxel

import "testing"

func TestAirInvariants(t *testing.T) {
	if Air != Type(0) {
		t.Fatalf("air must be the zero value")
	}
	if Air.Solid() {
		t.Fatalf("air must never be solid")
	}
	if !Air.Transparent() {
		t.Fatalf("air must be transparent")
	}
}

func TestAttributeTable(t *testing.T) {
	cases := []struct {
		typ         Type
		solid       bool
		transparent bool
	}{
		{Stone, true, false},
		{Dirt, true, false},
		{Grass, true, false},
		{Sand, true, false},
		{Water, false, true},
		{Wood, true, false},
		{Leaves, true, true},
	}
	for _, tc := range cases {
		if tc.typ.Solid() != tc.solid {
			t.Errorf("%s: solid = %v, want %v", tc.typ.Name(), tc.typ.Solid(), tc.solid)
		}
		if tc.typ.Transparent() != tc.transparent {
			t.Errorf("%s: transparent = %v, want %v", tc.typ.Name(), tc.typ.Transparent(), tc.transparent)
		}
	}
}

func TestByNameRoundTrip(t *testing.T) {
	for i := 0; i < Count(); i++ {
		typ := Type(i)
		got, ok := ByName(typ.Name())
		if !ok || got != typ {
			t.Fatalf("ByName(%q) = %v, %v; want %v", typ.Name(), got, ok, typ)
		}
	}
	if _, ok := ByName("bedrock"); ok {
		t.Fatalf("unknown name must not resolve")
	}
}

func TestUnknownTagIsLoud(t *testing.T) {
	bad := Type(200)
	if bad.Valid() {
		t.Fatalf("tag 200 must be invalid")
	}
	if c := bad.Color(); c != [4]float32{1, 0, 1, 1} {
		t.Fatalf("unknown color = %v, want magenta", c)
	}
	if bad.Solid() {
		t.Fatalf("unknown tags must not read as solid")
	}
}

func TestColorsHaveExpectedAlpha(t *testing.T) {
	if a := Water.Color()[3]; a >= 1.0 {
		t.Fatalf("water alpha = %v, want < 1", a)
	}
	if a := Stone.Color()[3]; a != 1.0 {
		t.Fatalf("stone alpha = %v, want 1", a)
	}
}
