package systems

import (
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"
)

// DensityField is a smooth [0, 1] noise field over the arena.
type DensityField struct {
	noise opensimplex.Noise
	scale float64
}

// NewDensityField creates a density field for the given seed. scale converts
// world units to noise space; smaller values give larger patches.
func NewDensityField(seed int64, scale float64) *DensityField {
	return &DensityField{
		noise: opensimplex.NewNormalized(seed),
		scale: scale,
	}
}

// At returns the density at p.
func (f *DensityField) At(p r2.Vec) float64 {
	return f.noise.Eval2(p.X*f.scale, p.Y*f.scale)
}
