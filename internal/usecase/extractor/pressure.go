package extractor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/stat"
)

var _ output.DataExtractor = (*PressureCenterExtractor)(nil)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Mean sea level pressure above this is assumed to be in Pa.
const paThreshold = 2000.0

type PressureOptions struct {
	// Sigma is the Gaussian smoothing width in grid points; 0 disables smoothing.
	Sigma         float64 `validate:"gte=0"`
	MinDistanceKm float64 `validate:"gte=0"`
	MinIntensity  float64 `validate:"gte=0"`
	Neighborhood  int     `validate:"oneof=4 8"`
}

func DefaultPressureOptions() PressureOptions {
	return PressureOptions{
		Sigma:         1.0,
		MinDistanceKm: 500,
		MinIntensity:  1.0,
		Neighborhood:  8,
	}
}

type PressureCenterExtractor struct {
	opts PressureOptions
}

func NewPressureCenterExtractor(opts PressureOptions) (*PressureCenterExtractor, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("%w: pressure extractor options: %v", entity.ErrInvalidInput, err)
	}
	return &PressureCenterExtractor{opts: opts}, nil
}

func (e *PressureCenterExtractor) Name() string {
	return "pressure-centers"
}

func (e *PressureCenterExtractor) Variable() string {
	return entity.VariableMeanSeaLevel
}

// Extract finds high and low pressure centres, strongest first.
func (e *PressureCenterExtractor) Extract(field entity.Field) ([]entity.PressureCenter, error) {
	if err := field.Validate(); err != nil {
		return nil, err
	}
	if field.Nj < 3 || field.Ni < 3 {
		return nil, fmt.Errorf("%w: grid %dx%d too small for extrema detection", entity.ErrInvalidInput, field.Nj, field.Ni)
	}
	if hasNaN(field.Values) {
		return nil, fmt.Errorf("%w: %s contains missing values", entity.ErrInvalidInput, field.ShortName)
	}

	values := toHPa(field.Values, field.Units)
	smoothed := gaussianFilter(grid{nj: field.Nj, ni: field.Ni, v: values}, e.opts.Sigma)

	var centers []entity.PressureCenter
	for _, kind := range []entity.PressureCenterType{entity.PressureHigh, entity.PressureLow} {
		for _, c := range localExtrema(smoothed, e.opts.Neighborhood, kind == entity.PressureHigh) {
			center := e.describeCell(smoothed, c, kind, field)
			// Flat plateaus have no contrast and are never centres.
			if center.Intensity > 0 && center.Intensity >= e.opts.MinIntensity {
				centers = append(centers, center)
			}
		}
	}

	sortCenters(centers)
	return e.filterByDistance(centers), nil
}

func (e *PressureCenterExtractor) describeCell(g grid, c cell, kind entity.PressureCenterType, field entity.Field) entity.PressureCenter {
	p := g.at(c.j, c.i)

	var neighbours []float64
	for _, v := range window(g, c, 2).v {
		if v != p {
			neighbours = append(neighbours, v)
		}
	}

	var intensity float64
	if len(neighbours) > 0 {
		intensity = math.Abs(p - stat.Mean(neighbours, nil))
	}

	return entity.PressureCenter{
		Type:        kind,
		Latitude:    field.Lats[c.j],
		Longitude:   field.Lons[c.i],
		PressureHPa: p,
		Intensity:   intensity,
		Confidence:  1 - math.Exp(-meanGradientMagnitude(window(g, c, 1))),
		Row:         c.j,
		Col:         c.i,
		ValidTime:   field.ValidTime,
	}
}

// filterByDistance keeps the strongest centre of every cluster closer than MinDistanceKm.
func (e *PressureCenterExtractor) filterByDistance(centers []entity.PressureCenter) []entity.PressureCenter {
	if e.opts.MinDistanceKm <= 0 {
		return centers
	}

	var kept []entity.PressureCenter
	for _, c := range centers {
		tooClose := false
		for _, k := range kept {
			if haversineKm(c.Latitude, c.Longitude, k.Latitude, k.Longitude) < e.opts.MinDistanceKm {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, c)
		}
	}
	return kept
}

func (e *PressureCenterExtractor) Summarize(field entity.Field) (string, error) {
	centers, err := e.Extract(field)
	if err != nil {
		return "", err
	}
	return FormatPressureCenters(centers), nil
}

func FormatPressureCenters(centers []entity.PressureCenter) string {
	var b strings.Builder
	b.WriteString("# PRESSURE CENTERS\n\n")

	if len(centers) == 0 {
		b.WriteString("No significant pressure centers were detected in the mean sea level pressure field.")
		return b.String()
	}

	b.WriteString("The following pressure centers were detected in the mean sea level pressure field")
	if t := centers[0].ValidTime; !t.IsZero() {
		fmt.Fprintf(&b, " (valid %s)", t.UTC().Format("2006-01-02 15:04 UTC"))
	}
	b.WriteString(", strongest first:\n")

	for _, c := range centers {
		label := "Low"
		if c.Type == entity.PressureHigh {
			label = "High"
		}
		fmt.Fprintf(&b, "\n- %s pressure center: %.1f hPa at %s (intensity %.1f hPa, confidence %.2f)",
			label, c.PressureHPa, formatLatLon(c.Latitude, c.Longitude), c.Intensity, c.Confidence)
	}
	return b.String()
}

func toHPa(values []float64, units string) []float64 {
	out := append([]float64(nil), values...)
	if strings.EqualFold(units, "hPa") {
		return out
	}
	if strings.EqualFold(units, "Pa") || stat.Mean(values, nil) > paThreshold {
		for k := range out {
			out[k] /= 100
		}
	}
	return out
}

// sortCenters orders by intensity, then type and grid position so equal intensities are stable.
func sortCenters(centers []entity.PressureCenter) {
	sort.SliceStable(centers, func(a, b int) bool {
		ca, cb := centers[a], centers[b]
		if ca.Intensity != cb.Intensity {
			return ca.Intensity > cb.Intensity
		}
		if ca.Type != cb.Type {
			return ca.Type < cb.Type
		}
		if ca.Row != cb.Row {
			return ca.Row < cb.Row
		}
		return ca.Col < cb.Col
	})
}
