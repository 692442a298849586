// Package tz is the public facade over the compiled tzdata dataset: it
// resolves identifiers, reports UTC offsets, classifies local wall-clock
// readings, and walks transitions, all lazily against a default embedded
// dataset or an explicitly loaded one.
package tz

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/tzcore/tzcore/epochns"
	"github.com/tzcore/tzcore/internal/unixtime"
	"github.com/tzcore/tzcore/tzident"
	"github.com/tzcore/tzcore/tzpack"
	"github.com/tzcore/tzcore/tzresolve"
)

//go:embed data/dataset.tzc
var embeddedDataset []byte

// IsoDateTime is a local wall-clock reading in proleptic Gregorian fields,
// with no attached offset or zone.
type IsoDateTime struct {
	Year       int
	Month      int
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int32
}

// toSeconds converts the ISO fields to a naive epoch-second count, as if
// the fields were UTC. This is the input CandidatesForLocal classifies
// against a zone's transition table.
func (d IsoDateTime) toSeconds() int64 {
	return unixtime.FromDateTime(d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

var (
	defaultOnce sync.Once
	defaultDS   *tzpack.Dataset
	defaultNorm *tzident.Normalizer

	mu      sync.RWMutex
	dataset *tzpack.Dataset
	norm    *tzident.Normalizer
)

func loadDefault() {
	ds, err := tzpack.Unpack(embeddedDataset)
	if err != nil {
		panic(fmt.Sprintf("tz: embedded dataset corrupt: %v", err))
	}
	defaultDS = ds
	defaultNorm = tzident.FromTrie(ds.Trie, ds.Names, ds.Version)
}

func active() (*tzpack.Dataset, *tzident.Normalizer) {
	mu.RLock()
	ds, n := dataset, norm
	mu.RUnlock()
	if ds != nil {
		return ds, n
	}
	defaultOnce.Do(loadDefault)
	return defaultDS, defaultNorm
}

// LoadFromFile replaces the active dataset with the one packed at path,
// scoped to the lifetime of the process: once called, every subsequent
// resolution in this package uses the loaded dataset instead of the
// embedded default.
func LoadFromFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tz: read dataset: %w", err)
	}
	ds, err := tzpack.Unpack(b)
	if err != nil {
		return fmt.Errorf("tz: unpack dataset: %w", err)
	}
	mu.Lock()
	dataset = ds
	norm = tzident.FromTrie(ds.Trie, ds.Names, ds.Version)
	mu.Unlock()
	return nil
}

// ResolveIdentifier normalizes input (case-insensitively) to its canonical
// spelling and a stable ResolvedId, failing if input names no known zone
// or alias.
func ResolveIdentifier(input string) (canonical string, id tzident.ResolvedId, err error) {
	_, n := active()
	canonical, id, ok := n.Normalize(input)
	if !ok {
		return "", 0, fmt.Errorf("tz: unknown identifier %q: %w", input, tzident.ErrNotFound)
	}
	return canonical, id, nil
}

// OffsetNanosecondsFor returns the UTC offset, in whole seconds, in force
// at instant (given as nanoseconds since the epoch) for the zone
// identified by id.
func OffsetNanosecondsFor(id tzident.ResolvedId, instant epochns.Nanoseconds) (int32, error) {
	ds, _ := active()
	return tzresolve.OffsetForUTC(ds, id, instant)
}

// CandidateEpochNsForLocal classifies a local wall-clock reading for the
// zone identified by id into the UTC instants it could denote.
func CandidateEpochNsForLocal(id tzident.ResolvedId, local IsoDateTime) (tzresolve.Candidates, error) {
	ds, _ := active()
	return tzresolve.CandidatesForLocal(ds, id, local.toSeconds(), local.Nanosecond)
}

// NextTransition returns the first transition strictly after instant for
// the zone identified by id.
func NextTransition(id tzident.ResolvedId, instant epochns.Nanoseconds) (at epochns.Nanoseconds, offsetNanoseconds int64, ok bool, err error) {
	ds, _ := active()
	ns, offsetSeconds, ok, err := tzresolve.NextTransition(ds, id, instant)
	if err != nil || !ok {
		return epochns.Nanoseconds{}, 0, ok, err
	}
	return ns, int64(offsetSeconds) * 1_000_000_000, true, nil
}

// PreviousTransition returns the last transition strictly before instant's
// floor-divided whole second for the zone identified by id.
func PreviousTransition(id tzident.ResolvedId, instant epochns.Nanoseconds) (at epochns.Nanoseconds, offsetNanoseconds int64, ok bool, err error) {
	ds, _ := active()
	ns, offsetSeconds, ok, err := tzresolve.PreviousTransition(ds, id, instant)
	if err != nil || !ok {
		return epochns.Nanoseconds{}, 0, ok, err
	}
	return ns, int64(offsetSeconds) * 1_000_000_000, true, nil
}

// Version reports the tzdata version string embedded in the active
// dataset.
func Version() string {
	ds, _ := active()
	return ds.Version
}
