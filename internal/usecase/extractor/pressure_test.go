package extractor

import (
	"math"
	"strings"
	"testing"
	"time"

	"earthreach/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pressureField builds a 21x21 grid (60N..20N, 20W..20E, 2 degree spacing) in Pa with
// a high at row 5, col 5 and a deeper low at row 15, col 15.
func pressureField() entity.Field {
	const n = 21
	f := entity.Field{
		ShortName: entity.VariableMeanSeaLevel,
		Units:     "Pa",
		Ni:        n,
		Nj:        n,
		Lats:      make([]float64, n),
		Lons:      make([]float64, n),
		Values:    make([]float64, n*n),
		ValidTime: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	for k := 0; k < n; k++ {
		f.Lats[k] = 60 - 2*float64(k)
		f.Lons[k] = -20 + 2*float64(k)
	}

	bump := func(j, i, cj, ci int) float64 {
		d2 := float64((j-cj)*(j-cj) + (i-ci)*(i-ci))
		return math.Exp(-d2 / 8)
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			f.Values[j*n+i] = 101300 + 2000*bump(j, i, 5, 5) - 2500*bump(j, i, 15, 15)
		}
	}
	return f
}

func TestPressureCenterExtractor_FindsHighAndLow(t *testing.T) {
	e, err := NewPressureCenterExtractor(DefaultPressureOptions())
	require.NoError(t, err)

	centers, err := e.Extract(pressureField())
	require.NoError(t, err)
	require.Len(t, centers, 2)

	low := centers[0]
	assert.Equal(t, entity.PressureLow, low.Type)
	assert.Equal(t, 15, low.Row)
	assert.Equal(t, 15, low.Col)
	assert.Equal(t, 30.0, low.Latitude)
	assert.Equal(t, 10.0, low.Longitude)
	assert.Less(t, low.PressureHPa, 1000.0)

	high := centers[1]
	assert.Equal(t, entity.PressureHigh, high.Type)
	assert.Equal(t, 5, high.Row)
	assert.Equal(t, 5, high.Col)
	assert.Greater(t, high.PressureHPa, 1020.0)

	assert.Greater(t, low.Intensity, high.Intensity)
	for _, c := range centers {
		assert.GreaterOrEqual(t, c.Intensity, 1.0)
		assert.Greater(t, c.Confidence, 0.0)
		assert.Less(t, c.Confidence, 1.0)
		assert.Equal(t, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), c.ValidTime)
	}
}

func TestPressureCenterExtractor_Deterministic(t *testing.T) {
	e, err := NewPressureCenterExtractor(DefaultPressureOptions())
	require.NoError(t, err)

	first, err := e.Summarize(pressureField())
	require.NoError(t, err)
	second, err := e.Summarize(pressureField())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPressureCenterExtractor_UnitsAgnostic(t *testing.T) {
	e, err := NewPressureCenterExtractor(DefaultPressureOptions())
	require.NoError(t, err)

	pa := pressureField()
	hpa := pressureField()
	hpa.Units = "hPa"
	for k := range hpa.Values {
		hpa.Values[k] /= 100
	}

	fromPa, err := e.Extract(pa)
	require.NoError(t, err)
	fromHPa, err := e.Extract(hpa)
	require.NoError(t, err)

	require.Len(t, fromHPa, len(fromPa))
	for k := range fromPa {
		assert.InDelta(t, fromPa[k].PressureHPa, fromHPa[k].PressureHPa, 1e-6)
	}
}

func TestPressureCenterExtractor_DistanceSuppression(t *testing.T) {
	opts := DefaultPressureOptions()
	opts.MinDistanceKm = 5000
	e, err := NewPressureCenterExtractor(opts)
	require.NoError(t, err)

	centers, err := e.Extract(pressureField())
	require.NoError(t, err)

	require.Len(t, centers, 1)
	assert.Equal(t, entity.PressureLow, centers[0].Type)
}

func TestPressureCenterExtractor_IntensityFilter(t *testing.T) {
	opts := DefaultPressureOptions()
	opts.MinIntensity = 1000
	e, err := NewPressureCenterExtractor(opts)
	require.NoError(t, err)

	summary, err := e.Summarize(pressureField())
	require.NoError(t, err)
	assert.Contains(t, summary, "No significant pressure centers")
}

func TestPressureCenterExtractor_FlatPlateauHasNoCenters(t *testing.T) {
	opts := DefaultPressureOptions()
	opts.MinIntensity = 0
	opts.Sigma = 0
	e, err := NewPressureCenterExtractor(opts)
	require.NoError(t, err)

	f := pressureField()
	for k := range f.Values {
		f.Values[k] = 101300
	}

	centers, err := e.Extract(f)
	require.NoError(t, err)
	assert.Empty(t, centers)
}

func TestPressureCenterExtractor_Summarize(t *testing.T) {
	e, err := NewPressureCenterExtractor(DefaultPressureOptions())
	require.NoError(t, err)

	summary, err := e.Summarize(pressureField())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(summary, "# PRESSURE CENTERS\n\n"))
	assert.Contains(t, summary, "(valid 2024-01-15 12:00 UTC)")
	assert.Contains(t, summary, "- Low pressure center: ")
	assert.Contains(t, summary, "at 30.00°N, 10.00°E")
	assert.Contains(t, summary, "at 50.00°N, 10.00°W")
	assert.Less(t, strings.Index(summary, "Low pressure"), strings.Index(summary, "High pressure"))
}

func TestPressureCenterExtractor_Errors(t *testing.T) {
	_, err := NewPressureCenterExtractor(PressureOptions{Neighborhood: 6})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = NewPressureCenterExtractor(PressureOptions{Sigma: -1, Neighborhood: 4})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	e, err := NewPressureCenterExtractor(DefaultPressureOptions())
	require.NoError(t, err)

	small := entity.Field{ShortName: "msl", Ni: 2, Nj: 2, Lats: []float64{1, 0}, Lons: []float64{0, 1}, Values: []float64{1, 2, 3, 4}}
	_, err = e.Extract(small)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	withNaN := pressureField()
	withNaN.Values[7] = math.NaN()
	_, err = e.Extract(withNaN)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	broken := pressureField()
	broken.Values = broken.Values[:10]
	_, err = e.Extract(broken)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestPressureCenterExtractor_Identity(t *testing.T) {
	e, err := NewPressureCenterExtractor(DefaultPressureOptions())
	require.NoError(t, err)

	assert.Equal(t, "pressure-centers", e.Name())
	assert.Equal(t, entity.VariableMeanSeaLevel, e.Variable())
}
