// SPDX-License-Identifier: GPL-2.0-or-later

package math

type Number interface {
	int64 | float64 | float32 | int
}

type Float interface {
	float64 | float32
}

func Clamp[K Number](min, val, max K) K {
	if min > val {
		return min
	} else if max < val {
		return max
	}
	return val
}

// Lerp blends linearly from a (frac 0) to b (frac 1).
func Lerp[K Float](a, b, frac K) K {
	return a + (b-a)*frac
}

// Square returns v*v. Used for perceptual volume curves.
func Square[K Number](v K) K {
	return v * v
}
