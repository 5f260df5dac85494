package transport

import (
	"math"

	"github.com/mcsky/twostream/rng"
)

// SampleFreePath draws a Beer-Lambert free path in optical depth units:
// -ln(xi) with xi uniform on (0,1). A draw of exactly zero would map to an
// infinite path, so it is retried until nonzero. Both the creation-time
// sample and every post-interaction resample route through here.
func SampleFreePath(src rng.Source) float64 {
	xi := src.Float64()
	for xi == 0 {
		xi = src.Float64()
	}
	return -math.Log(xi)
}
