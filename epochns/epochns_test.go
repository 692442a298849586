package epochns

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSeconds(t *testing.T) {
	n, err := FromSeconds(1)
	require.NoError(t, err)
	assert.Equal(t, "1000000000", n.String())
}

func TestToSecondsFloorDivisionNegative(t *testing.T) {
	// -1ns is one nanosecond before the epoch: the whole-second component
	// must floor to -1s with an in-second remainder of 999999999ns, not
	// truncate to 0s/-1ns.
	n := FromInt64(-1)
	sec, ns := n.ToSeconds()
	assert.EqualValues(t, -1, sec)
	assert.EqualValues(t, 999999999, ns)
}

func TestToSecondsExact(t *testing.T) {
	n := FromInt64(-nsPerSecond)
	sec, ns := n.ToSeconds()
	assert.EqualValues(t, -1, sec)
	assert.EqualValues(t, 0, ns)
}

func TestOutOfRange(t *testing.T) {
	tooFar := new(big.Int).Add(maxNanos, big.NewInt(1))
	_, err := New(tooFar)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestAddOverflow(t *testing.T) {
	_, err := Max.Add(FromInt64(1))
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestAddSub(t *testing.T) {
	a := FromInt64(5)
	b := FromInt64(3)
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "8", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "2", diff.String())
}

func TestToMilliseconds(t *testing.T) {
	n := FromInt64(-1)
	assert.EqualValues(t, -1, n.ToMilliseconds())
}
