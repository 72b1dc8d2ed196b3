package partition

import "math"

func log2(x float64) float64 { return math.Log2(x) }

// xlogx returns c·log2(c) for c>0, and 0 for c≤0, per spec.md §4.1/§4.2
// (the original's free function of the same name, used by every scorer as
// well as by Partition.Entropy).
func xlogx(c float64) float64 {
	if c > 0 {
		return c * math.Log2(c)
	}
	return 0
}
