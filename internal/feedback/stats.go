// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package feedback

import "math"

// wilsonZ is the z-score for a 95% confidence interval.
const wilsonZ = 1.96

// Weighting of the two evidence families in the combined score.
const (
	implicitShare = 0.6
	explicitShare = 0.4
)

// BayesianPosterior returns the Laplace-smoothed success probability
// (successes+1)/(successes+failures+2). With no evidence it is exactly
// 0.5 and it approaches 0 or 1 asymptotically as evidence accumulates.
func BayesianPosterior(successes, failures int) float64 {
	if successes < 0 {
		successes = 0
	}
	if failures < 0 {
		failures = 0
	}
	return float64(successes+1) / float64(successes+failures+2)
}

// WilsonLowerBound returns the lower bound of the 95% Wilson score
// interval for a binomial proportion. It is 0 when total is not positive
// and never exceeds the raw success rate.
func WilsonLowerBound(successes, total int) float64 {
	if total <= 0 {
		return 0
	}
	if successes < 0 {
		successes = 0
	}
	if successes > total {
		successes = total
	}

	n := float64(total)
	p := float64(successes) / n
	z2 := wilsonZ * wilsonZ

	center := p + z2/(2*n)
	margin := wilsonZ * math.Sqrt(p*(1-p)/n+z2/(4*n*n))
	lower := (center - margin) / (1 + z2/n)

	if lower < 0 {
		return 0
	}
	return lower
}

// recompute refreshes the derived scores from the current counters.
func (s *PresetStats) recompute() {
	implicitSuccesses := s.Selected + s.Engaged
	implicitFailures := s.Ignored + s.SelectedOther
	explicitSuccesses := s.Upvotes + s.Pins
	explicitFailures := s.Downvotes + s.Hides

	s.ImplicitScore = BayesianPosterior(implicitSuccesses, implicitFailures)
	s.ExplicitScore = BayesianPosterior(explicitSuccesses, explicitFailures)
	s.CombinedScore = implicitShare*s.ImplicitScore + explicitShare*s.ExplicitScore

	successes := implicitSuccesses + explicitSuccesses
	trials := successes + implicitFailures + explicitFailures
	s.WilsonLowerBound = WilsonLowerBound(successes, trials)
}
