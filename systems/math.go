package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// distance returns the Euclidean distance between two points.
func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// finite reports whether both components are neither NaN nor infinite.
func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// limit scales v down to at most maxLen, keeping its direction.
func limit(v r2.Vec, maxLen float64) r2.Vec {
	n := r2.Norm(v)
	if n <= maxLen || n == 0 {
		return v
	}
	return r2.Scale(maxLen/n, v)
}

// randomIn returns a uniformly random point inside box shrunk by margin on every side.
func randomIn(rng *rand.Rand, box r2.Box, margin float64) r2.Vec {
	lo := r2.Add(box.Min, r2.Vec{X: margin, Y: margin})
	hi := r2.Sub(box.Max, r2.Vec{X: margin, Y: margin})
	if hi.X < lo.X {
		lo.X, hi.X = box.Center().X, box.Center().X
	}
	if hi.Y < lo.Y {
		lo.Y, hi.Y = box.Center().Y, box.Center().Y
	}
	return r2.Vec{
		X: lo.X + rng.Float64()*(hi.X-lo.X),
		Y: lo.Y + rng.Float64()*(hi.Y-lo.Y),
	}
}

// clampInto keeps p inside box shrunk by margin.
func clampInto(p r2.Vec, box r2.Box, margin float64) r2.Vec {
	return r2.Vec{
		X: clampFloat(p.X, box.Min.X+margin, box.Max.X-margin),
		Y: clampFloat(p.Y, box.Min.Y+margin, box.Max.Y-margin),
	}
}
