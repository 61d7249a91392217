// Package biometric compares fixed-length face descriptors produced by an
// external feature extractor.
package biometric

import (
	"fmt"
	"math"

	dErrors "presence/pkg/domain-errors"
)

// DescriptorLength is the number of components in a face descriptor.
const DescriptorLength = 128

// DefaultDistanceThreshold is the Euclidean distance below which two
// descriptors are considered the same face.
const DefaultDistanceThreshold = 0.6

// Descriptor is an ordered face embedding with components in [-1, 1].
type Descriptor []float64

// Comparison is the outcome of comparing two descriptors.
type Comparison struct {
	Distance float64
	Match    bool
	// Score decays linearly from 100 at distance 0 to 0 at distance >= 1.
	Score float64
}

// ValidateDescriptor rejects any descriptor that is not exactly 128 finite
// components within [-1, 1]. It never truncates, pads or clamps.
func ValidateDescriptor(d Descriptor) error {
	if len(d) != DescriptorLength {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("descriptor must have exactly %d components, got %d", DescriptorLength, len(d)))
	}
	for i, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("descriptor component %d is not finite", i))
		}
		if v < -1 || v > 1 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("descriptor component %d is outside [-1, 1]", i))
		}
	}
	return nil
}

// Matcher compares descriptors against a distance threshold.
type Matcher struct {
	DistanceThreshold float64
}

// NewMatcher returns a Matcher; a non-positive threshold selects the default.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 {
		threshold = DefaultDistanceThreshold
	}
	return Matcher{DistanceThreshold: threshold}
}

// Compare validates both descriptors and returns their distance, match
// decision and score.
func (m Matcher) Compare(a, b Descriptor) (Comparison, error) {
	if len(a) != len(b) {
		return Comparison{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("dimension mismatch: %d vs %d", len(a), len(b)))
	}
	if err := ValidateDescriptor(a); err != nil {
		return Comparison{}, err
	}
	if err := ValidateDescriptor(b); err != nil {
		return Comparison{}, err
	}

	threshold := m.DistanceThreshold
	if threshold <= 0 {
		threshold = DefaultDistanceThreshold
	}

	d := EuclideanDistance(a, b)
	return Comparison{
		Distance: d,
		Match:    d < threshold,
		Score:    Score(d),
	}, nil
}

// EuclideanDistance assumes len(a) == len(b).
func EuclideanDistance(a, b Descriptor) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Score maps a distance to [0, 100]. The result is not rounded; use
// RoundScore for display only.
func Score(distance float64) float64 {
	s := (1 - math.Min(distance, 1)) * 100
	return math.Max(0, math.Min(100, s))
}

// RoundScore rounds a score to two decimals.
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
