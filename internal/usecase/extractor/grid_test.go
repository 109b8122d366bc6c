package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestReflect(t *testing.T) {
	assert.Equal(t, 0, reflect(-1, 5))
	assert.Equal(t, 1, reflect(-2, 5))
	assert.Equal(t, 4, reflect(5, 5))
	assert.Equal(t, 3, reflect(6, 5))
	assert.Equal(t, 2, reflect(2, 5))
	assert.Equal(t, 0, reflect(3, 1))
}

func TestGaussianKernel(t *testing.T) {
	k := gaussianKernel(1)
	assert.Len(t, k, 9)
	assert.InDelta(t, 1.0, floats.Sum(k), 1e-12)
	assert.InDelta(t, k[0], k[8], 1e-15)
	assert.Equal(t, 4, floats.MaxIdx(k))
}

func TestGaussianFilter_PreservesConstantField(t *testing.T) {
	g := grid{nj: 4, ni: 6, v: make([]float64, 24)}
	for k := range g.v {
		g.v[k] = 1013.25
	}

	out := gaussianFilter(g, 1.5)
	for _, v := range out.v {
		assert.InDelta(t, 1013.25, v, 1e-9)
	}
}

func TestGaussianFilter_ZeroSigmaCopies(t *testing.T) {
	g := grid{nj: 1, ni: 3, v: []float64{1, 2, 3}}
	out := gaussianFilter(g, 0)
	out.v[0] = 99
	assert.Equal(t, []float64{1, 2, 3}, g.v)
}

func TestLocalExtrema_IgnoresBorder(t *testing.T) {
	g := grid{nj: 3, ni: 3, v: []float64{
		9, 0, 0,
		0, 5, 0,
		0, 0, 0,
	}}

	assert.Empty(t, localExtrema(g, 8, true))
	assert.Equal(t, []cell{{1, 1}}, localExtrema(g, 4, true))
}

func TestGradient1D(t *testing.T) {
	assert.Equal(t, []float64{1, 1.5, 2}, gradient1D([]float64{1, 2, 4}))
	assert.Equal(t, []float64{0}, gradient1D([]float64{7}))
}

func TestMeanGradientMagnitude(t *testing.T) {
	// A plane rising by 1 per column has unit gradient everywhere.
	w := grid{nj: 3, ni: 3, v: []float64{0, 1, 2, 0, 1, 2, 0, 1, 2}}
	assert.InDelta(t, 1.0, meanGradientMagnitude(w), 1e-12)
}

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 111.19, haversineKm(0, 0, 0, 1), 0.01)
	assert.InDelta(t, 0, haversineKm(45, 10, 45, 10), 1e-9)
	assert.InDelta(t, haversineKm(10, 170, 10, -170), haversineKm(10, -10, 10, 10), 1e-6)
}

func TestFormatLatLon(t *testing.T) {
	assert.Equal(t, "33.50°S, 160.00°W", formatLatLon(-33.5, 200))
	assert.Equal(t, "51.50°N, 0.12°E", formatLatLon(51.5, 0.12))
}
