package grib

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"earthreach/internal/domain/entity"
	"earthreach/internal/infrastructure/logger"
	"earthreach/internal/usecase/extractor"

	"github.com/nilsmagnus/grib/griblib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegularLatLon_NorthToSouth(t *testing.T) {
	lats, lons, err := regularLatLon(4, 3, 90, 0, -90, 270, 0)
	require.NoError(t, err)

	assert.Equal(t, []float64{90, 0, -90}, lats)
	assert.Equal(t, []float64{0, 90, 180, 270}, lons)
}

func TestRegularLatLon_SouthToNorthAcrossDateline(t *testing.T) {
	lats, lons, err := regularLatLon(3, 2, 30, 170, 40, -170, scanJPositive)
	require.NoError(t, err)

	assert.Equal(t, []float64{30, 40}, lats)
	assert.Equal(t, []float64{170, 180, 190}, lons)
}

func TestRegularLatLon_WestwardScan(t *testing.T) {
	_, lons, err := regularLatLon(3, 1, 0, 10, 0, 350, scanINegative)
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 0, -10}, lons)
}

func TestRegularLatLon_Errors(t *testing.T) {
	_, _, err := regularLatLon(0, 3, 0, 0, 0, 0, 0)
	assert.Error(t, err)

	_, _, err = regularLatLon(3, 3, 0, 0, 1, 1, scanJConsecutive)
	assert.Error(t, err)
}

func TestReferenceTime(t *testing.T) {
	got := referenceTime(griblib.Time{Year: 2024, Month: 1, Day: 15, Hour: 12})
	assert.Equal(t, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), got)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		product product
		want    string
	}{
		{"mean sea level pressure", product{param: parameter{0, 3, 1, surfaceMeanSeaLevel}, level: math.NaN()}, entity.VariableMeanSeaLevel},
		{"2 metre temperature", product{param: parameter{0, 0, 0, surfaceHeightAboveGround}, level: 2}, entity.VariableTemperature2m},
		{"850 hPa temperature", product{param: parameter{0, 0, 0, surfaceIsobaric}, level: 85000}, ""},
		{"10 metre temperature", product{param: parameter{0, 0, 0, surfaceHeightAboveGround}, level: 10}, ""},
		{"surface pressure", product{param: parameter{0, 3, 0, 1}}, ""},
		{"precipitation", product{param: parameter{0, 1, 8, 1}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := lookup(tt.product)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, v.shortName)
		})
	}
}

func TestScaledValue(t *testing.T) {
	assert.Equal(t, 2.0, scaledValue(0, 2))
	assert.Equal(t, 0.5, scaledValue(1, 5))
	assert.Equal(t, 500.0, scaledValue(0x80|2, 5))
	assert.True(t, math.IsNaN(scaledValue(0, math.MaxUint32)))
}

func TestValidTime(t *testing.T) {
	ref := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		unit     int
		forecast int64
		want     time.Time
	}{
		{unit: 1, forecast: 0, want: ref},
		{unit: 1, forecast: 48, want: ref.Add(48 * time.Hour)},
		{unit: 0, forecast: 90, want: ref.Add(90 * time.Minute)},
		{unit: 2, forecast: 3, want: ref.Add(72 * time.Hour)},
		{unit: 11, forecast: 2, want: ref.Add(12 * time.Hour)},
	}
	for _, tt := range tests {
		got, err := validTime(ref, tt.unit, tt.forecast)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := validTime(ref, 3, 1)
	assert.Error(t, err)
}

// testdata/forecast.grib2 holds three GRIB2 messages on a 5x5 grid (60N..20N, 0E..40E, 10 degree
// spacing), all analysed 2024-01-15 00 UTC with a +48 h forecast time:
// 850 hPa temperature (250..254 K by row), mean sea level pressure (a bowl from 1040 hPa at the
// corners down to 1000 hPa at 40N 20E) and 2 metre temperature (-10..10 °C by row, in K).
const fixture = "testdata/forecast.grib2"

func TestReader_ReadFixture(t *testing.T) {
	fields, err := NewReader(logger.NewNop()).Read(context.Background(), fixture)
	require.NoError(t, err)

	assert.Equal(t, []string{entity.VariableTemperature2m, entity.VariableMeanSeaLevel}, fields.Names())

	valid := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)

	msl, ok := fields.Get(entity.VariableMeanSeaLevel)
	require.True(t, ok)
	assert.Equal(t, "Pa", msl.Units)
	assert.Equal(t, 5, msl.Ni)
	assert.Equal(t, 5, msl.Nj)
	assert.Equal(t, []float64{60, 50, 40, 30, 20}, msl.Lats)
	assert.Equal(t, []float64{0, 10, 20, 30, 40}, msl.Lons)
	assert.Equal(t, valid, msl.ValidTime)
	require.Len(t, msl.Values, 25)
	assert.InDelta(t, 104000, msl.At(0, 0), 1e-6)
	assert.InDelta(t, 100000, msl.At(2, 2), 1e-6)
	assert.InDelta(t, 100500, msl.At(2, 3), 1e-6)

	t2m, ok := fields.Get(entity.VariableTemperature2m)
	require.True(t, ok)
	assert.Equal(t, "K", t2m.Units)
	assert.Equal(t, valid, t2m.ValidTime)
	require.Len(t, t2m.Values, 25)
	assert.InDelta(t, 263.15, t2m.At(0, 4), 1e-6)
	assert.InDelta(t, 283.15, t2m.At(4, 0), 1e-6)
}

func TestReader_FixtureSummaries(t *testing.T) {
	fields, err := NewReader(logger.NewNop()).Read(context.Background(), fixture)
	require.NoError(t, err)

	t2m, _ := fields.Get(entity.VariableTemperature2m)
	summary, err := extractor.NewTemperatureExtractor().Summarize(t2m)
	require.NoError(t, err)
	assert.Equal(t, "# 2 METRE TEMPERATURE\n\n"+
		"Area-weighted statistics of the 2 metre temperature field (valid 2024-01-17 00:00 UTC):\n"+
		"\n- Mean: 1.5°C"+
		"\n- Standard deviation: 6.8°C"+
		"\n- Minimum: -10.0°C at 60.00°N, 0.00°E"+
		"\n- Maximum: 10.0°C at 20.00°N, 0.00°E"+
		"\n- Zonal means:"+
		"\n  - Northern mid-latitudes (23.5°N to 66.5°N): -1.4°C"+
		"\n  - Tropics (23.5°S to 23.5°N): 10.0°C", summary)

	pressure, err := extractor.NewPressureCenterExtractor(extractor.DefaultPressureOptions())
	require.NoError(t, err)
	msl, _ := fields.Get(entity.VariableMeanSeaLevel)
	first, err := pressure.Summarize(msl)
	require.NoError(t, err)
	second, err := pressure.Summarize(msl)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "(valid 2024-01-17 00:00 UTC)")
	assert.Contains(t, first, "- Low pressure center: ")
	assert.Contains(t, first, "at 40.00°N, 20.00°E")
	assert.NotContains(t, first, "High pressure")
}

func TestReader_Errors(t *testing.T) {
	r := NewReader(logger.NewNop())

	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "missing.grib2"))
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	junk := filepath.Join(t.TempDir(), "junk.grib2")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not grib"), 0o600))
	_, err = r.Read(context.Background(), junk)
	assert.Error(t, err)
}
