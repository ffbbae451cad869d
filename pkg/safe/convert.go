// Package safe provides numeric conversions that fail instead of wrapping around.
package safe

import (
	"fmt"
	"math"
)

// Integer lists the integer kinds accepted by the conversions.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

// Uint32 converts v to uint32, rejecting negatives and values above math.MaxUint32.
func Uint32[T Integer](v T) (uint32, error) {
	if isNegative(v) || !fits(v, math.MaxUint32) {
		return 0, fmt.Errorf("value %d out of uint32 range", v)
	}
	return uint32(v), nil
}

// Uint64 converts v to uint64, rejecting negatives.
func Uint64[T Integer](v T) (uint64, error) {
	if isNegative(v) {
		return 0, fmt.Errorf("value %d out of uint64 range", v)
	}
	return uint64(v), nil
}

// Int64 converts v to int64, rejecting values above math.MaxInt64.
// Postgres BIGINT columns go through it.
func Int64[T Integer](v T) (int64, error) {
	if !isNegative(v) && !fits(v, math.MaxInt64) {
		return 0, fmt.Errorf("value %d out of int64 range", v)
	}
	return int64(v), nil
}

func isNegative[T Integer](v T) bool {
	return v < T(0)
}

// fits reports whether a non-negative v is at most limit.
func fits[T Integer](v T, limit uint64) bool {
	return isNegative(v) || uint64(v) <= limit
}
