package tzpack

import (
	"testing"

	"github.com/tzcore/tzcore/internal/tzir"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	zones := map[string]*tzir.Zone{
		"America/New_York": {
			Name:                "America/New_York",
			InitialOffsetSeconds: -18000,
			InitialIsDST:         false,
			InitialDesignation:   "EST",
			Transitions: []tzir.Transition{
				{AtUTC: 1615705200, OffsetSeconds: -14400, IsDST: true, Designation: "EDT"},
				{AtUTC: 1636264800, OffsetSeconds: -18000, IsDST: false, Designation: "EST"},
			},
		},
		"Etc/UTC": {
			Name:                 "Etc/UTC",
			InitialOffsetSeconds: 0,
			InitialIsDST:         false,
			InitialDesignation:   "UTC",
		},
	}
	links := map[string]string{"US/Eastern": "America/New_York"}

	b, err := Pack(zones, links, "2024a-test")
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	ds, err := Unpack(b)
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if ds.Version != "2024a-test" {
		t.Errorf("Version = %q, want 2024a-test", ds.Version)
	}
	if len(ds.Names) != 2 || len(ds.Zones) != 2 {
		t.Fatalf("names/zones count = %d/%d, want 2/2", len(ds.Names), len(ds.Zones))
	}

	for _, tc := range []struct {
		key  string
		name string
	}{
		{"america/new_york", "America/New_York"}, {"US/EASTERN", "America/New_York"}, {"etc/utc", "Etc/UTC"},
	} {
		v, ok := ds.Trie.Lookup(tc.key)
		if !ok {
			t.Fatalf("Lookup(%q) miss", tc.key)
		}
		if ds.Names[v] != tc.name {
			t.Errorf("Lookup(%q) -> %q, want %q", tc.key, ds.Names[v], tc.name)
		}
	}

	nyIdx, _ := ds.Trie.Lookup("america/new_york")
	ny := ds.Zones[nyIdx]
	if len(ny.Transitions) != 2 {
		t.Fatalf("America/New_York transitions = %d, want 2", len(ny.Transitions))
	}
	if ny.Transitions[0] != 1615705200 || ny.Transitions[1] != 1636264800 {
		t.Errorf("transitions = %v, want [1615705200 1636264800]", ny.Transitions)
	}
	initialType := ny.Types[ny.InitialType]
	if initialType.OffsetSeconds != -18000 || initialType.IsDST {
		t.Errorf("initial type = %+v, want offset=-18000 isDST=false", initialType)
	}
	if desig := ny.Designation(initialType.AbbrIndex); desig != "EST" {
		t.Errorf("initial designation = %q, want EST", desig)
	}

	firstType := ny.Types[ny.TransitionIdx[0]]
	if firstType.OffsetSeconds != -14400 || !firstType.IsDST {
		t.Errorf("first transition type = %+v, want offset=-14400 isDST=true", firstType)
	}
	if desig := ny.Designation(firstType.AbbrIndex); desig != "EDT" {
		t.Errorf("first transition designation = %q, want EDT", desig)
	}

	utcIdx, _ := ds.Trie.Lookup("etc/utc")
	utc := ds.Zones[utcIdx]
	if len(utc.Transitions) != 0 {
		t.Errorf("Etc/UTC transitions = %d, want 0", len(utc.Transitions))
	}
	if utc.Types[utc.InitialType].OffsetSeconds != 0 {
		t.Errorf("Etc/UTC initial offset = %d, want 0", utc.Types[utc.InitialType].OffsetSeconds)
	}
}

func TestPackUnknownLinkTarget(t *testing.T) {
	zones := map[string]*tzir.Zone{
		"UTC": {Name: "UTC", InitialDesignation: "UTC"},
	}
	links := map[string]string{"Bogus/Zone": "No/Such/Zone"}
	if _, err := Pack(zones, links, "test"); err == nil {
		t.Fatal("expected error for unknown link target")
	}
}

func TestUnpackBadMagic(t *testing.T) {
	if _, err := Unpack([]byte("nope")); err == nil {
		t.Fatal("expected error for bad magic")
	}
}
