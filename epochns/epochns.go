// Package epochns implements signed epoch-nanosecond arithmetic wide enough
// to span the full Temporal instant range, which overflows a native int64.
package epochns

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrOutOfRange is returned whenever a value would fall outside [Min, Max].
var ErrOutOfRange = errors.New("epochns: instant out of range")

const (
	nsPerSecond = 1_000_000_000
	nsPerMilli  = 1_000_000
	// secondsPerDay and daySpan give the Temporal instant range: 10^8 days
	// either side of the Unix epoch.
	secondsPerDay  = 86400
	daySpan        = 100_000_000
)

var (
	big1e9   = big.NewInt(nsPerSecond)
	big1e6   = big.NewInt(nsPerMilli)
	secSpan  = new(big.Int).Mul(big.NewInt(secondsPerDay), big.NewInt(daySpan))
	maxNanos = new(big.Int).Mul(secSpan, big1e9)
	minNanos = new(big.Int).Neg(maxNanos)
)

// Min and Max are the inclusive bounds of a representable Nanoseconds value:
// ±86400×10^8×10^9 nanoseconds from the Unix epoch.
var (
	Min = Nanoseconds{new(big.Int).Set(minNanos)}
	Max = Nanoseconds{new(big.Int).Set(maxNanos)}
)

// Nanoseconds is a signed count of nanoseconds since the Unix epoch. The
// zero value represents the epoch itself. Values are immutable: every
// operation returns a new Nanoseconds rather than mutating the receiver.
type Nanoseconds struct {
	v *big.Int
}

// New returns the Nanoseconds value for v, failing if v falls outside
// [Min, Max].
func New(v *big.Int) (Nanoseconds, error) {
	n := Nanoseconds{new(big.Int).Set(v)}
	if !n.inRange() {
		return Nanoseconds{}, fmt.Errorf("%w: %s", ErrOutOfRange, v.String())
	}
	return n, nil
}

// FromInt64 wraps a plain int64 nanosecond count, which always fits.
func FromInt64(v int64) Nanoseconds {
	return Nanoseconds{big.NewInt(v)}
}

// FromSeconds returns the Nanoseconds value for s whole seconds since the
// epoch.
func FromSeconds(s int64) (Nanoseconds, error) {
	v := new(big.Int).Mul(big.NewInt(s), big1e9)
	return New(v)
}

// FromMilliseconds returns the Nanoseconds value for ms whole milliseconds
// since the epoch.
func FromMilliseconds(ms int64) (Nanoseconds, error) {
	v := new(big.Int).Mul(big.NewInt(ms), big1e6)
	return New(v)
}

func (n Nanoseconds) inRange() bool {
	return n.v.Cmp(minNanos) >= 0 && n.v.Cmp(maxNanos) <= 0
}

// AsBigInt returns the underlying value. The caller must not mutate it.
func (n Nanoseconds) AsBigInt() *big.Int {
	return n.v
}

// String implements fmt.Stringer.
func (n Nanoseconds) String() string {
	if n.v == nil {
		return "0"
	}
	return n.v.String()
}

// Cmp returns -1, 0, or +1 as n is less than, equal to, or greater than o.
func (n Nanoseconds) Cmp(o Nanoseconds) int {
	return n.v.Cmp(o.v)
}

// Add returns n+d, failing if the result is out of range.
func (n Nanoseconds) Add(d Nanoseconds) (Nanoseconds, error) {
	return New(new(big.Int).Add(n.v, d.v))
}

// Sub returns n-d, failing if the result is out of range.
func (n Nanoseconds) Sub(d Nanoseconds) (Nanoseconds, error) {
	return New(new(big.Int).Sub(n.v, d.v))
}

// AddSeconds returns n shifted by s whole seconds, failing if out of range.
func (n Nanoseconds) AddSeconds(s int64) (Nanoseconds, error) {
	delta := new(big.Int).Mul(big.NewInt(s), big1e9)
	return New(new(big.Int).Add(n.v, delta))
}

// ToSeconds splits n into a floor-divided whole-second count and the
// remaining nanoseconds within that second, using Euclidean division so the
// remainder is always in [0, 1e9) even for negative n. This is the floor
// division the instant-to-offset algorithm depends on: truncating division
// would push negative sub-second instants into the wrong second.
func (n Nanoseconds) ToSeconds() (seconds int64, nanosInSecond int32) {
	var q big.Int
	r := new(big.Int)
	q.DivMod(n.v, big1e9, r)
	return q.Int64(), int32(r.Int64())
}

// ToMilliseconds floor-divides n into whole milliseconds, discarding the
// sub-millisecond remainder.
func (n Nanoseconds) ToMilliseconds() int64 {
	var q big.Int
	q.DivMod(n.v, big1e6, new(big.Int))
	return q.Int64()
}
