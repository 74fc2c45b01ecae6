// Package safeconv provides checked integer conversions that panic on
// overflow. Tree-sitter reports node offsets and rows as unsigned values;
// these helpers keep the int conversions honest on 32-bit platforms.
package safeconv

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MustUintToInt converts uint to int, panics on overflow.
// Use only when overflow is logically impossible.
func MustUintToInt(v uint) int {
	if v > uint(MaxInt) {
		panic("safeconv: uint to int overflow")
	}

	return int(v)
}

// MustUint32ToInt converts uint32 to int, panics on overflow.
// Use only when overflow is logically impossible.
func MustUint32ToInt(v uint32) int {
	if uint(v) > uint(MaxInt) {
		panic("safeconv: uint32 to int overflow")
	}

	return int(v)
}
