package miner

import (
	"errors"
	"fmt"
)

// ErrThreshold is spec.md §7's Threshold error kind: a user-supplied
// relative threshold outside [0,1] — the significance level driving
// scoring.AdjustedDependency's chi-squared critical value, the one
// scorer parameter that the original documents as bounded this way.
var ErrThreshold = errors.New("miner: threshold outside [0,1]")

// ValidateThreshold reports ErrThreshold if v, the named relative
// threshold, falls outside [0,1].
func ValidateThreshold(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s = %v", ErrThreshold, name, v)
	}
	return nil
}
