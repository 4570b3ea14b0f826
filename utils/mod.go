package utils

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

func Sum[T Number](values []T) T {
	var total T
	for _, v := range values {
		total += v
	}
	return total
}

// CumSum returns the running totals of values.
func CumSum[T Number](values []T) []T {
	sums := make([]T, len(values))
	var acc T
	for i, v := range values {
		acc += v
		sums[i] = acc
	}
	return sums
}

// ArgMax returns the index of the first largest value, or -1 if empty.
func ArgMax[T constraints.Ordered](values []T) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}

// ArgMin returns the index of the first smallest value, or -1 if empty.
func ArgMin[T constraints.Ordered](values []T) int {
	best := -1
	for i, v := range values {
		if best < 0 || v < values[best] {
			best = i
		}
	}
	return best
}
