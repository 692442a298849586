package tzif

import (
	"bytes"
	"testing"

	"github.com/tzcore/tzcore/internal/tzir"
)

func TestExportZone_StandardOnly(t *testing.T) {
	z := &tzir.Zone{
		Name:                 "Test/Standard",
		InitialOffsetSeconds: 3600,
		InitialIsDST:         false,
		InitialDesignation:   "XST",
	}

	f, err := ExportZone(z)
	if err != nil {
		t.Fatalf("ExportZone() error: %v", err)
	}
	if f.Version != V2 {
		t.Errorf("Version = %v, want V2", f.Version)
	}
	if f.V1Header.Typecnt != 1 || f.V2Header.Typecnt != 1 {
		t.Errorf("Typecnt = %d/%d, want 1/1", f.V1Header.Typecnt, f.V2Header.Typecnt)
	}
	if len(f.V2Data.LocalTimeTypeRecord) != 1 {
		t.Fatalf("LocalTimeTypeRecord = %d records, want 1", len(f.V2Data.LocalTimeTypeRecord))
	}
	rec := f.V2Data.LocalTimeTypeRecord[0]
	if rec.Utoff != 3600 || rec.Dst {
		t.Errorf("LocalTimeTypeRecord[0] = %+v, want Utoff=3600 Dst=false", rec)
	}
	if got := designationAt(f.V2Data.TimeZoneDesignation, rec.Idx); got != "XST" {
		t.Errorf("designation = %q, want XST", got)
	}

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	decoded, err := DecodeFile(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeFile() error: %v", err)
	}
	if decoded.V2Data.LocalTimeTypeRecord[0].Utoff != 3600 {
		t.Errorf("round-tripped offset = %d, want 3600", decoded.V2Data.LocalTimeTypeRecord[0].Utoff)
	}
}

func TestExportZone_WithTransitions(t *testing.T) {
	z := &tzir.Zone{
		Name:                 "Test/Transitions",
		InitialOffsetSeconds: 3600,
		InitialIsDST:         false,
		InitialDesignation:   "XST",
		Transitions: []tzir.Transition{
			{AtUTC: 1000000, OffsetSeconds: 7200, IsDST: true, Designation: "XDT"},
			{AtUTC: 2000000, OffsetSeconds: 3600, IsDST: false, Designation: "XST"},
		},
	}

	f, err := ExportZone(z)
	if err != nil {
		t.Fatalf("ExportZone() error: %v", err)
	}
	if len(f.V2Data.TransitionTimes) != 2 {
		t.Fatalf("TransitionTimes = %d, want 2", len(f.V2Data.TransitionTimes))
	}
	if f.V2Data.TransitionTimes[0] != 1000000 || f.V2Data.TransitionTimes[1] != 2000000 {
		t.Errorf("TransitionTimes = %v, want [1000000 2000000]", f.V2Data.TransitionTimes)
	}
	if len(f.V2Data.LocalTimeTypeRecord) != 2 {
		t.Fatalf("LocalTimeTypeRecord = %d records, want 2 (initial XST reused by the second transition)", len(f.V2Data.LocalTimeTypeRecord))
	}

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if err := Validate(f); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func designationAt(buf []byte, idx uint8) string {
	end := int(idx)
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return string(buf[idx:end])
}
