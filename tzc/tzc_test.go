package tzc

import (
	"errors"
	"testing"
	"time"

	"github.com/tzcore/tzcore/tzdata"
)

func TestCompileZone_StandardOnly(t *testing.T) {
	db := tzdata.Database{
		Zones: map[string][]tzdata.ZoneLine{
			"Test/Standard": {
				{Name: "Test/Standard", Offset: 1 * time.Hour, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesStandard}, Format: "XST"},
			},
		},
	}

	z, err := compileZone(db, "Test/Standard", DefaultEndYear)
	if err != nil {
		t.Fatalf("compileZone() error: %v", err)
	}
	if z.InitialOffsetSeconds != 3600 {
		t.Errorf("InitialOffsetSeconds = %d, want 3600", z.InitialOffsetSeconds)
	}
	if z.InitialIsDST {
		t.Error("InitialIsDST = true, want false")
	}
	if z.InitialDesignation != "XST" {
		t.Errorf("InitialDesignation = %q, want XST", z.InitialDesignation)
	}
	if len(z.Transitions) != 0 {
		t.Errorf("Transitions = %v, want none", z.Transitions)
	}
}

func TestCompileZone_NamedRules(t *testing.T) {
	rules := []tzdata.RuleLine{
		{
			Name: "Test", From: 2020, To: 2021, In: time.March,
			On:     tzdata.Day{Form: tzdata.DayFormLast, Day: time.Sunday},
			At:     tzdata.Time{Duration: 2 * time.Hour, Form: tzdata.WallClock},
			Save:   tzdata.Time{Duration: 1 * time.Hour, Form: tzdata.DaylightSavingTime},
			Letter: "S",
		},
		{
			Name: "Test", From: 2020, To: 2021, In: time.October,
			On:     tzdata.Day{Form: tzdata.DayFormLast, Day: time.Sunday},
			At:     tzdata.Time{Duration: 3 * time.Hour, Form: tzdata.WallClock},
			Save:   tzdata.Time{Duration: 0, Form: tzdata.StandardTime},
			Letter: "",
		},
	}
	db := tzdata.Database{
		Zones: map[string][]tzdata.ZoneLine{
			"Test/Named": {
				{Name: "Test/Named", Offset: 0, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesName, Name: "Test"}, Format: "X%sT"},
			},
		},
		Rules: map[string][]tzdata.RuleLine{"Test": rules},
	}

	z, err := compileZone(db, "Test/Named", 2021)
	if err != nil {
		t.Fatalf("compileZone() error: %v", err)
	}
	if z.InitialOffsetSeconds != 0 || z.InitialIsDST || z.InitialDesignation != "XT" {
		t.Errorf("initial state = %d/%v/%q, want 0/false/XT", z.InitialOffsetSeconds, z.InitialIsDST, z.InitialDesignation)
	}

	wantStates := []struct {
		offset int32
		isDST  bool
		desig  string
	}{
		{3600, true, "XST"},
		{0, false, "XT"},
		{3600, true, "XST"},
		{0, false, "XT"},
	}
	if len(z.Transitions) != len(wantStates) {
		t.Fatalf("Transitions = %d entries, want %d: %+v", len(z.Transitions), len(wantStates), z.Transitions)
	}
	for i, want := range wantStates {
		got := z.Transitions[i]
		if got.OffsetSeconds != want.offset || got.IsDST != want.isDST || got.Designation != want.desig {
			t.Errorf("Transitions[%d] = %+v, want offset=%d isDST=%v desig=%q", i, got, want.offset, want.isDST, want.desig)
		}
	}
	for i := 1; i < len(z.Transitions); i++ {
		if z.Transitions[i].AtUTC <= z.Transitions[i-1].AtUTC {
			t.Errorf("Transitions[%d].AtUTC = %d, not after Transitions[%d].AtUTC = %d", i, z.Transitions[i].AtUTC, i-1, z.Transitions[i-1].AtUTC)
		}
	}
}

func TestCompileZone_SegmentBoundary(t *testing.T) {
	db := tzdata.Database{
		Zones: map[string][]tzdata.ZoneLine{
			"Test/Boundary": {
				{
					Name: "Test/Boundary", Offset: 0,
					Rules:  tzdata.ZoneRules{Form: tzdata.ZoneRulesStandard},
					Format: "LMT",
					Until:  tzdata.Until{Defined: true, Year: 2000, Parts: tzdata.UntilYear},
				},
				{
					Continuation: true, Offset: 1 * time.Hour,
					Rules:  tzdata.ZoneRules{Form: tzdata.ZoneRulesStandard},
					Format: "XST",
				},
			},
		},
	}

	z, err := compileZone(db, "Test/Boundary", DefaultEndYear)
	if err != nil {
		t.Fatalf("compileZone() error: %v", err)
	}
	if z.InitialDesignation != "LMT" || z.InitialOffsetSeconds != 0 {
		t.Errorf("initial state = %d/%q, want 0/LMT", z.InitialOffsetSeconds, z.InitialDesignation)
	}
	if len(z.Transitions) != 1 {
		t.Fatalf("Transitions = %d entries, want 1: %+v", len(z.Transitions), z.Transitions)
	}
	if got := z.Transitions[0]; got.OffsetSeconds != 3600 || got.Designation != "XST" {
		t.Errorf("Transitions[0] = %+v, want offset=3600 desig=XST", got)
	}
}

func TestCompileDatabase_UndefinedRuleSet(t *testing.T) {
	db := tzdata.Database{
		Zones: map[string][]tzdata.ZoneLine{
			"Test/Err": {
				{Name: "Test/Err", Offset: 0, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesName, Name: "Missing"}, Format: "X%sT"},
			},
		},
	}

	_, err := CompileDatabase(db, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	if cerr.Zone != "Test/Err" {
		t.Errorf("Zone = %q, want Test/Err", cerr.Zone)
	}
}

func TestCompileDatabase_Concurrent(t *testing.T) {
	db := tzdata.Database{
		Zones: map[string][]tzdata.ZoneLine{
			"Test/A": {{Name: "Test/A", Offset: 1 * time.Hour, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesStandard}, Format: "AST"}},
			"Test/B": {{Name: "Test/B", Offset: 2 * time.Hour, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesStandard}, Format: "BST"}},
		},
	}

	results, err := CompileDatabase(db, Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("CompileDatabase() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d entries, want 2", len(results))
	}
	want := map[string]int32{"Test/A": 3600, "Test/B": 7200}
	for name, offset := range want {
		z, ok := results[name]
		if !ok {
			t.Fatalf("missing zone %q", name)
		}
		if z.InitialOffsetSeconds != offset {
			t.Errorf("%s InitialOffsetSeconds = %d, want %d", name, z.InitialOffsetSeconds, offset)
		}
	}
}
