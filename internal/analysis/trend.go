package analysis

import (
	"math"
	"sort"
)

// stableSlope is the largest absolute slope still reported as stable.
const stableSlope = 0.1

// AnalyzeTrend fits value against the 0-based position of each point after
// sorting by date. Parameter is left for the caller to fill in.
func AnalyzeTrend(points []TrendPoint) TrendResult {
	n := len(points)
	if n < 2 {
		return TrendResult{Direction: DirectionInsufficientData, Points: n}
	}
	pts := make([]TrendPoint, n)
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })

	// sums as in a pairwise Pearson accumulator
	var sumX, sumY, sumXX, sumXY float64
	for i, p := range pts {
		x := float64(i)
		sumX += x
		sumY += p.Value
		sumXX += x * x
		sumXY += x * p.Value
	}
	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	mean := sumY / fn
	var ssRes, ssTot float64
	for i, p := range pts {
		pred := slope*float64(i) + intercept
		ssRes += (p.Value - pred) * (p.Value - pred)
		ssTot += (p.Value - mean) * (p.Value - mean)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	dir := DirectionStable
	switch {
	case math.Abs(slope) <= stableSlope:
	case slope > 0:
		dir = DirectionIncreasing
	default:
		dir = DirectionDecreasing
	}
	return TrendResult{
		Direction:  dir,
		Slope:      slope,
		Intercept:  intercept,
		RSquared:   r2,
		Confidence: math.Max(0, r2),
		Points:     n,
	}
}
