package extractor

import (
	"fmt"
	"math"
	"strings"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var _ output.DataExtractor = (*TemperatureExtractor)(nil)

const (
	kelvinOffset = 273.15
	// A field whose mean is above this is assumed to be in Kelvin.
	kelvinThreshold = 150.0
)

type latitudeBand struct {
	name     string
	min, max float64
}

// Bands from north to south; bounds are inclusive on the equatorward side.
var latitudeBands = []latitudeBand{
	{"Northern polar cap (66.5°N to 90°N)", 66.5, 90},
	{"Northern mid-latitudes (23.5°N to 66.5°N)", 23.5, 66.5},
	{"Tropics (23.5°S to 23.5°N)", -23.5, 23.5},
	{"Southern mid-latitudes (66.5°S to 23.5°S)", -66.5, -23.5},
	{"Southern polar cap (90°S to 66.5°S)", -90, -66.5},
}

func (b latitudeBand) contains(lat float64) bool {
	switch {
	case b.min >= 23.5:
		return lat > b.min && lat <= b.max
	case b.max <= -23.5:
		return lat >= b.min && lat < b.max
	default:
		return lat >= b.min && lat <= b.max
	}
}

type TemperatureExtractor struct{}

func NewTemperatureExtractor() *TemperatureExtractor {
	return &TemperatureExtractor{}
}

func (e *TemperatureExtractor) Name() string {
	return "temperature"
}

func (e *TemperatureExtractor) Variable() string {
	return entity.VariableTemperature2m
}

// Extract computes cos(latitude) area-weighted statistics in °C, ignoring missing values.
func (e *TemperatureExtractor) Extract(field entity.Field) (*entity.TemperatureSummary, error) {
	if err := field.Validate(); err != nil {
		return nil, err
	}

	var (
		values  []float64
		weights []float64
		lats    []float64
		lons    []float64
	)
	for j := 0; j < field.Nj; j++ {
		w := math.Cos(field.Lats[j] * math.Pi / 180)
		if w < 0 {
			w = 0
		}
		for i := 0; i < field.Ni; i++ {
			v := field.At(j, i)
			if math.IsNaN(v) {
				continue
			}
			values = append(values, v)
			weights = append(weights, w)
			lats = append(lats, field.Lats[j])
			lons = append(lons, field.Lons[i])
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s has no valid values", entity.ErrInvalidInput, field.ShortName)
	}

	if strings.EqualFold(field.Units, "K") || (!strings.EqualFold(field.Units, "C") && stat.Mean(values, nil) > kelvinThreshold) {
		floats.AddConst(-kelvinOffset, values)
	}

	// Grids that only touch the poles have zero total weight.
	if floats.Sum(weights) == 0 {
		weights = nil
	}
	mean, std := stat.PopMeanStdDev(values, weights)

	minIdx, maxIdx := floats.MinIdx(values), floats.MaxIdx(values)

	summary := &entity.TemperatureSummary{
		MeanC:     mean,
		StdDevC:   std,
		Min:       entity.TemperaturePoint{ValueC: values[minIdx], Latitude: lats[minIdx], Longitude: lons[minIdx]},
		Max:       entity.TemperaturePoint{ValueC: values[maxIdx], Latitude: lats[maxIdx], Longitude: lons[maxIdx]},
		ValidTime: field.ValidTime,
	}

	for _, band := range latitudeBands {
		var bv, bw []float64
		for k, lat := range lats {
			if band.contains(lat) {
				bv = append(bv, values[k])
				if weights != nil {
					bw = append(bw, weights[k])
				}
			}
		}
		if len(bv) == 0 {
			continue
		}
		if bw != nil && floats.Sum(bw) == 0 {
			bw = nil
		}
		summary.Bands = append(summary.Bands, entity.BandMean{Name: band.name, MeanC: stat.Mean(bv, bw)})
	}

	return summary, nil
}

func (e *TemperatureExtractor) Summarize(field entity.Field) (string, error) {
	summary, err := e.Extract(field)
	if err != nil {
		return "", err
	}
	return FormatTemperatureSummary(summary), nil
}

func FormatTemperatureSummary(s *entity.TemperatureSummary) string {
	var b strings.Builder
	b.WriteString("# 2 METRE TEMPERATURE\n\n")
	b.WriteString("Area-weighted statistics of the 2 metre temperature field")
	if !s.ValidTime.IsZero() {
		fmt.Fprintf(&b, " (valid %s)", s.ValidTime.UTC().Format("2006-01-02 15:04 UTC"))
	}
	b.WriteString(":\n")

	fmt.Fprintf(&b, "\n- Mean: %.1f°C", s.MeanC)
	fmt.Fprintf(&b, "\n- Standard deviation: %.1f°C", s.StdDevC)
	fmt.Fprintf(&b, "\n- Minimum: %.1f°C at %s", s.Min.ValueC, formatLatLon(s.Min.Latitude, s.Min.Longitude))
	fmt.Fprintf(&b, "\n- Maximum: %.1f°C at %s", s.Max.ValueC, formatLatLon(s.Max.Latitude, s.Max.Longitude))

	if len(s.Bands) > 0 {
		b.WriteString("\n- Zonal means:")
		for _, band := range s.Bands {
			fmt.Fprintf(&b, "\n  - %s: %.1f°C", band.Name, band.MeanC)
		}
	}
	return b.String()
}
