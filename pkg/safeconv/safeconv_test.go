package safeconv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filescope/filescope/pkg/safeconv"
)

func TestMustUintToInt_RoundTrips(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, safeconv.MustUintToInt(0))
	assert.Equal(t, 42, safeconv.MustUintToInt(42))
	assert.Equal(t, safeconv.MaxInt, safeconv.MustUintToInt(uint(safeconv.MaxInt)))
}

func TestMustUintToInt_Overflow_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		safeconv.MustUintToInt(uint(safeconv.MaxInt) + 1)
	})
}

func TestMustUint32ToInt_RoundTrips(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, safeconv.MustUint32ToInt(0))
	assert.Equal(t, 7, safeconv.MustUint32ToInt(7))
}
