package tz

import (
	"testing"

	"github.com/tzcore/tzcore/epochns"
	"github.com/tzcore/tzcore/tzresolve"
)

func TestResolveIdentifier_EmbeddedDataset(t *testing.T) {
	canonical, id, err := ResolveIdentifier("etc/utc")
	if err != nil {
		t.Fatalf("ResolveIdentifier() error: %v", err)
	}
	if canonical != "UTC" {
		t.Errorf("canonical = %q, want UTC", canonical)
	}

	instant, err := epochns.FromSeconds(1700000000)
	if err != nil {
		t.Fatal(err)
	}
	off, err := OffsetNanosecondsFor(id, instant)
	if err != nil {
		t.Fatalf("OffsetNanosecondsFor() error: %v", err)
	}
	if off != 0 {
		t.Errorf("offset = %d, want 0", off)
	}
}

func TestResolveIdentifier_Unknown(t *testing.T) {
	if _, _, err := ResolveIdentifier("Not/AZone"); err == nil {
		t.Fatal("expected error for unknown identifier")
	}
}

func TestIsoDateTimeToSecondsEpoch(t *testing.T) {
	d := IsoDateTime{Year: 1970, Month: 1, Day: 1}
	if got := d.toSeconds(); got != 0 {
		t.Errorf("toSeconds() = %d, want 0", got)
	}
	before := IsoDateTime{Year: 1969, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59}
	if got := before.toSeconds(); got != -1 {
		t.Errorf("toSeconds() = %d, want -1", got)
	}
}

func TestCandidateEpochNsForLocal_UTCIsAlwaysUnambiguous(t *testing.T) {
	_, id, err := ResolveIdentifier("UTC")
	if err != nil {
		t.Fatal(err)
	}
	c, err := CandidateEpochNsForLocal(id, IsoDateTime{Year: 2024, Month: 6, Day: 15, Hour: 12})
	if err != nil {
		t.Fatalf("CandidateEpochNsForLocal() error: %v", err)
	}
	if c.Kind != tzresolve.CandidateOne {
		t.Errorf("Kind = %v, want CandidateOne", c.Kind)
	}
	if c.First.Offset != 0 {
		t.Errorf("offset = %d, want 0", c.First.Offset)
	}
}
