// Package tzc compiles a parsed tzdata.Database into per-zone transition
// histories (internal/tzir.Zone), resolving named rule sets, zone
// continuation chains, and UNTIL boundaries into a single chronological
// list of UTC offset changes per zone.
package tzc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tzcore/tzcore/internal/tzexpand"
	"github.com/tzcore/tzcore/internal/tzir"
	"github.com/tzcore/tzcore/tzdata"
)

// DefaultEndYear is the year tzdata's "maximum" TO/UNTIL expands to unless
// Options.EndYear overrides it. It is documented as the safe minimum cap
// for indefinite rules: far enough out that no currently-scheduled DST
// transition is missed, without requiring unbounded rule expansion.
const DefaultEndYear = 2099

// CompileError reports which zone failed to compile and why.
type CompileError struct {
	Zone string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile zone %q: %v", e.Zone, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Options controls how CompileDatabase expands indefinite rules and how
// much concurrency it uses.
type Options struct {
	// EndYear bounds expansion of TO=max/UNTIL-less rules. Zero means
	// DefaultEndYear.
	EndYear int
	// Concurrency bounds how many zones compile at once. Zero means
	// runtime.GOMAXPROCS(0).
	Concurrency int
}

func (o Options) endYear() int {
	if o.EndYear == 0 {
		return DefaultEndYear
	}
	return o.EndYear
}

func (o Options) concurrency() int {
	if o.Concurrency == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Concurrency
}

// CompileDatabase compiles every canonical zone in db into its transition
// history. Zones are independent of one another and compile concurrently,
// bounded by Options.Concurrency.
func CompileDatabase(db tzdata.Database, opts Options) (map[string]*tzir.Zone, error) {
	names := make([]string, 0, len(db.Zones))
	for name := range db.Zones {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		results = make(map[string]*tzir.Zone, len(names))
	)

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(opts.concurrency())
	for _, name := range names {
		name := name
		g.Go(func() error {
			z, err := compileZone(db, name, opts.endYear())
			if err != nil {
				return &CompileError{Zone: name, Err: err}
			}
			mu.Lock()
			results[name] = z
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func secs32(d time.Duration) int32 {
	return int32(d / time.Second)
}

// state is the offset/DST/designation triple active at some instant.
type state struct {
	offset int32
	isDST  bool
	desig  string
}

func compileZone(db tzdata.Database, name string, endYear int) (*tzir.Zone, error) {
	segments := db.Zones[name]
	if len(segments) == 0 {
		return nil, fmt.Errorf("no zone lines for %q", name)
	}

	z := &tzir.Zone{Name: name}

	var (
		allTransitions []tzir.Transition
		cur            state  // state active at the end of the segment processed so far
		segStart       tzexpand.Moment
	)
	segStart = tzexpand.EpochMin

	for segIdx, seg := range segments {
		segEnd, bounded := tzexpand.UntilMoment(seg.Until)
		if !bounded {
			segEnd = tzexpand.Moment{Year: endYear, Month: time.December, Day: 31}
		}

		base, err := baselineState(seg)
		if err != nil {
			return nil, fmt.Errorf("zone %q segment %d: %w", name, segIdx, err)
		}

		if segIdx == 0 {
			z.InitialOffsetSeconds = base.offset
			z.InitialIsDST = base.isDST
			z.InitialDesignation = base.desig
			cur = base
		} else {
			boundaryUTC := tzexpand.ToUTC(segStart.Year, segStart.Month, segStart.Day, tzdata.Time{Form: tzdata.WallClock}, secs32(segments[segIdx-1].Offset), cur.offset-secs32(segments[segIdx-1].Offset))
			allTransitions = appendTransition(allTransitions, boundaryUTC, base)
			cur = base
		}

		if seg.Rules.Form == tzdata.ZoneRulesName {
			rules, ok := db.Rules[seg.Rules.Name]
			if !ok || len(rules) == 0 {
				return nil, fmt.Errorf("zone %q segment %d: undefined rule set %q", name, segIdx, seg.Rules.Name)
			}
			occurrences := tzexpand.ExpandRules(segStart, segEnd, rules)
			running := int32(0) // a zone entering a named rule set starts at standard time
			for _, occ := range occurrences {
				at := tzexpand.ToUTC(occ.Year, occ.In, occ.On, occ.Rule.At, secs32(seg.Offset), running)
				save := secs32(occ.Rule.Save.Duration)
				running = save
				s := state{
					offset: secs32(seg.Offset) + save,
					isDST:  occ.Rule.Save.Form == tzdata.DaylightSavingTime,
					desig:  formatDesignation(seg.Format, occ.Rule.Letter, secs32(seg.Offset)+save, save != 0),
				}
				allTransitions = appendTransition(allTransitions, at, s)
				cur = s
			}
		}

		segStart = segEnd
	}

	allTransitions = dedupeTransitions(allTransitions)
	z.Transitions = allTransitions
	return z, nil
}

func appendTransition(ts []tzir.Transition, at int64, s state) []tzir.Transition {
	return append(ts, tzir.Transition{
		AtUTC:         at,
		OffsetSeconds: s.offset,
		IsDST:         s.isDST,
		Designation:   s.desig,
	})
}

// dedupeTransitions drops a transition whose state is identical to the one
// immediately before it: a no-op transition carries no information and
// only wastes space in the packed artifact.
func dedupeTransitions(ts []tzir.Transition) []tzir.Transition {
	if len(ts) == 0 {
		return ts
	}
	out := ts[:1]
	for _, t := range ts[1:] {
		prev := out[len(out)-1]
		if t.OffsetSeconds == prev.OffsetSeconds && t.IsDST == prev.IsDST && t.Designation == prev.Designation {
			continue
		}
		out = append(out, t)
	}
	return out
}

// baselineState computes the state that applies from the start of a zone
// continuation segment, before any of its own named-rule transitions have
// occurred.
func baselineState(seg tzdata.ZoneLine) (state, error) {
	switch seg.Rules.Form {
	case tzdata.ZoneRulesStandard:
		return state{
			offset: secs32(seg.Offset),
			isDST:  false,
			desig:  formatDesignation(seg.Format, "", secs32(seg.Offset), false),
		}, nil
	case tzdata.ZoneRulesTime:
		save := secs32(seg.Rules.Time.Duration)
		return state{
			offset: secs32(seg.Offset) + save,
			isDST:  save != 0,
			desig:  formatDesignation(seg.Format, "", secs32(seg.Offset)+save, save != 0),
		}, nil
	case tzdata.ZoneRulesName:
		return state{
			offset: secs32(seg.Offset),
			isDST:  false,
			desig:  formatDesignation(seg.Format, "", secs32(seg.Offset), false),
		}, nil
	default:
		return state{}, fmt.Errorf("unsupported rules form %v", seg.Rules.Form)
	}
}

// formatDesignation resolves a zone FORMAT field to a concrete abbreviation.
// FORMAT may contain "%s" (replaced by the rule's LETTER, empty for none),
// "%z" (replaced by the numeric UTC offset), a "/"-separated
// standard/daylight pair, or a plain literal.
func formatDesignation(format, letter string, offsetSeconds int32, isDST bool) string {
	if idx := strings.IndexByte(format, '/'); idx != -1 {
		if isDST {
			return format[idx+1:]
		}
		return format[:idx]
	}
	if strings.Contains(format, "%s") {
		return strings.ReplaceAll(format, "%s", letter)
	}
	if strings.Contains(format, "%z") {
		return strings.ReplaceAll(format, "%z", formatOffset(offsetSeconds))
	}
	return format
}

func formatOffset(seconds int32) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if s != 0 {
		return fmt.Sprintf("%s%02d%02d%02d", sign, h, m, s)
	}
	if m != 0 {
		return fmt.Sprintf("%s%02d%02d", sign, h, m)
	}
	return fmt.Sprintf("%s%02d", sign, h)
}
