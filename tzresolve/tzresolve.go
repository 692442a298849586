// Package tzresolve implements the read path over a packed tzpack.Dataset:
// translating a UTC instant or a local wall-clock reading into the offset
// and candidate instants a zone assigns it, and walking a zone's
// transition table forward or backward from a given instant.
package tzresolve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tzcore/tzcore/epochns"
	"github.com/tzcore/tzcore/tzident"
	"github.com/tzcore/tzcore/tzpack"
)

// ErrRange is returned when the requested instant or identifier falls
// outside what the dataset can resolve.
var ErrRange = errors.New("tzresolve: out of range")

// CandidateKind distinguishes the three shapes a local wall-clock reading
// can resolve to: none (it falls in a spring-forward gap), one (the common
// case), or two (it falls in a fall-back fold).
type CandidateKind int

const (
	CandidateNone CandidateKind = iota
	CandidateOne
	CandidateTwo
)

// Candidate is one concrete instant a local reading could map to, along
// with the UTC offset in force at that instant.
type Candidate struct {
	NS     epochns.Nanoseconds
	Offset int32
}

// Candidates is the result of resolving a local wall-clock reading. Its
// shape is driven by Kind: CandidateNone carries no Candidate values but
// the offsets bordering the gap; CandidateOne carries First; CandidateTwo
// carries both First and Second, ordered by ascending NS.
type Candidates struct {
	Kind CandidateKind

	// Populated when Kind == CandidateNone: the offset that applied just
	// before the gap and the offset that applies just after it.
	GapBeforeOffset int32
	GapAfterOffset  int32

	First  Candidate
	Second Candidate
}

// OffsetForUTC returns the UTC offset, in seconds, in force at instant for
// the zone identified by id.
func OffsetForUTC(ds *tzpack.Dataset, id tzident.ResolvedId, instant epochns.Nanoseconds) (int32, error) {
	z, ok := ds.ZoneByResolvedId(id)
	if !ok {
		return 0, fmt.Errorf("%w: resolved id %d", ErrRange, id)
	}
	seconds, _ := instant.ToSeconds()
	return offsetAtSeconds(z, seconds), nil
}

// offsetAtSeconds returns the offset active at the given floor-divided
// epoch second, via binary search for the latest transition at or before
// it.
func offsetAtSeconds(z *tzpack.Zone, seconds int64) int32 {
	idx := sort.Search(len(z.Transitions), func(i int) bool {
		return z.Transitions[i] > seconds
	}) - 1
	if idx < 0 {
		return z.Types[z.InitialType].OffsetSeconds
	}
	return z.Types[z.TransitionIdx[idx]].OffsetSeconds
}

// CandidatesForLocal resolves a local wall-clock reading (seconds since
// the epoch, computed as if the local fields were UTC) into the UTC
// instants a zone assigns it.
//
// A local reading is classified by comparing the offsets bordering the
// nearest transition: compute the candidate instant under the offset that
// applied before the nearest transition and the one that applied after; an
// instant is only genuine if converting it back through the offset that
// would actually be active there reproduces the original local reading.
func CandidatesForLocal(ds *tzpack.Dataset, id tzident.ResolvedId, localSeconds int64, nanosInSecond int32) (Candidates, error) {
	z, ok := ds.ZoneByResolvedId(id)
	if !ok {
		return Candidates{}, fmt.Errorf("%w: resolved id %d", ErrRange, id)
	}

	before, after := bordersNearestTransition(z, localSeconds)

	type trial struct {
		offset int32
		ns     epochns.Nanoseconds
		valid  bool
	}
	tryOffset := func(offset int32) trial {
		utcSeconds := localSeconds - int64(offset)
		actual := offsetAtSeconds(z, utcSeconds)
		ns, err := epochns.FromSeconds(utcSeconds)
		if err != nil {
			return trial{}
		}
		if nanosInSecond != 0 {
			ns, err = ns.Add(epochns.FromInt64(int64(nanosInSecond)))
			if err != nil {
				return trial{}
			}
		}
		return trial{offset: offset, ns: ns, valid: actual == offset}
	}

	t1 := tryOffset(before)
	t2 := tryOffset(after)

	switch {
	case before == after:
		if !t1.valid {
			return Candidates{}, fmt.Errorf("%w: local reading unresolved", ErrRange)
		}
		return Candidates{Kind: CandidateOne, First: Candidate{NS: t1.ns, Offset: t1.offset}}, nil

	case t1.valid && t2.valid:
		first, second := Candidate{NS: t1.ns, Offset: t1.offset}, Candidate{NS: t2.ns, Offset: t2.offset}
		if second.NS.Cmp(first.NS) < 0 {
			first, second = second, first
		}
		return Candidates{Kind: CandidateTwo, First: first, Second: second}, nil

	case t1.valid:
		return Candidates{Kind: CandidateOne, First: Candidate{NS: t1.ns, Offset: t1.offset}}, nil

	case t2.valid:
		return Candidates{Kind: CandidateOne, First: Candidate{NS: t2.ns, Offset: t2.offset}}, nil

	default:
		return Candidates{Kind: CandidateNone, GapBeforeOffset: before, GapAfterOffset: after}, nil
	}
}

// bordersNearestTransition returns the offsets active immediately before
// and immediately after the transition closest to localSeconds, treated as
// a naive UTC instant for the purpose of locating a neighborhood to probe.
func bordersNearestTransition(z *tzpack.Zone, localSeconds int64) (before, after int32) {
	if len(z.Transitions) == 0 {
		off := z.Types[z.InitialType].OffsetSeconds
		return off, off
	}
	idx := sort.Search(len(z.Transitions), func(i int) bool {
		return z.Transitions[i] > localSeconds
	})
	// Step back to the transition at or before localSeconds when it is
	// the closer one (or the only one).
	if idx == len(z.Transitions) || (idx > 0 && localSeconds-z.Transitions[idx-1] < z.Transitions[idx]-localSeconds) {
		idx--
	}
	afterOffset := func() int32 {
		if idx >= len(z.Transitions) {
			return z.Types[z.TransitionIdx[len(z.TransitionIdx)-1]].OffsetSeconds
		}
		return z.Types[z.TransitionIdx[idx]].OffsetSeconds
	}()
	beforeOffset := func() int32 {
		if idx == 0 {
			return z.Types[z.InitialType].OffsetSeconds
		}
		return z.Types[z.TransitionIdx[idx-1]].OffsetSeconds
	}()
	return beforeOffset, afterOffset
}

// NextTransition returns the first transition strictly after instant, or
// ok=false if instant is at or after the last known transition.
func NextTransition(ds *tzpack.Dataset, id tzident.ResolvedId, instant epochns.Nanoseconds) (at epochns.Nanoseconds, offset int32, ok bool, err error) {
	z, found := ds.ZoneByResolvedId(id)
	if !found {
		return epochns.Nanoseconds{}, 0, false, fmt.Errorf("%w: resolved id %d", ErrRange, id)
	}
	seconds, _ := instant.ToSeconds()
	idx := sort.Search(len(z.Transitions), func(i int) bool {
		return z.Transitions[i] > seconds
	})
	if idx >= len(z.Transitions) {
		return epochns.Nanoseconds{}, 0, false, nil
	}
	ns, e := epochns.FromSeconds(z.Transitions[idx])
	if e != nil {
		return epochns.Nanoseconds{}, 0, false, e
	}
	return ns, z.Types[z.TransitionIdx[idx]].OffsetSeconds, true, nil
}

// PreviousTransition returns the last transition strictly before instant's
// floor-divided whole second, or ok=false if there is none.
func PreviousTransition(ds *tzpack.Dataset, id tzident.ResolvedId, instant epochns.Nanoseconds) (at epochns.Nanoseconds, offset int32, ok bool, err error) {
	z, found := ds.ZoneByResolvedId(id)
	if !found {
		return epochns.Nanoseconds{}, 0, false, fmt.Errorf("%w: resolved id %d", ErrRange, id)
	}
	seconds, _ := instant.ToSeconds()
	idx := sort.Search(len(z.Transitions), func(i int) bool {
		return z.Transitions[i] >= seconds
	}) - 1
	if idx < 0 {
		return epochns.Nanoseconds{}, 0, false, nil
	}
	ns, e := epochns.FromSeconds(z.Transitions[idx])
	if e != nil {
		return epochns.Nanoseconds{}, 0, false, e
	}
	return ns, z.Types[z.TransitionIdx[idx]].OffsetSeconds, true, nil
}
