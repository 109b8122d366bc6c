package grib

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/nilsmagnus/grib/griblib"
)

var _ output.FieldSource = (*Reader)(nil)

const microDegrees = 1e6

// Scanning mode flags from GRIB2 code table 3.4.
const (
	scanINegative      = 0x80
	scanJPositive      = 0x40
	scanJConsecutive   = 0x20
	gridTemplateLatLon = 0
)

// Fixed surface types from GRIB2 code table 4.5.
const (
	surfaceIsobaric          = 100
	surfaceMeanSeaLevel      = 101
	surfaceHeightAboveGround = 103
)

type parameter struct {
	discipline, category, number, surfaceType int
}

type variable struct {
	shortName string
	units     string
	// level is the required first surface value; 0 accepts any.
	level float64
}

var knownParameters = map[parameter]variable{
	{0, 3, 1, surfaceMeanSeaLevel}:      {shortName: entity.VariableMeanSeaLevel, units: "Pa"},
	{0, 0, 0, surfaceHeightAboveGround}: {shortName: entity.VariableTemperature2m, units: "K", level: 2},
}

// product is the part of a message's identification the reader matches on.
type product struct {
	param        parameter
	level        float64
	timeUnit     int
	forecastTime int64
}

func productOf(m *griblib.Message) product {
	p := m.Section4.ProductDefinitionTemplate
	return product{
		param: parameter{
			discipline:  int(m.Section0.Discipline),
			category:    int(p.ParameterCategory),
			number:      int(p.ParameterNumber),
			surfaceType: int(p.FirstSurface.Type),
		},
		level:        scaledValue(int(p.FirstSurface.Scale), uint32(p.FirstSurface.Value)),
		timeUnit:     int(p.IndicatorOfUnitOfTimeRange),
		forecastTime: int64(p.ForecastTime),
	}
}

func lookup(p product) (variable, bool) {
	v, ok := knownParameters[p.param]
	if !ok {
		return variable{}, false
	}
	if v.level != 0 && p.level != v.level {
		return variable{}, false
	}
	return v, true
}

// scaledValue decodes a GRIB2 scale factor (sign and magnitude in one octet) and scaled value.
// All bits set in the value means missing.
func scaledValue(scale int, value uint32) float64 {
	if value == math.MaxUint32 {
		return math.NaN()
	}
	factor := scale & 0x7f
	if scale&0x80 != 0 {
		factor = -factor
	}
	return float64(value) / math.Pow(10, float64(factor))
}

// Time range units from GRIB2 code table 4.4.
var timeUnits = map[int]time.Duration{
	0:  time.Minute,
	1:  time.Hour,
	2:  24 * time.Hour,
	10: 3 * time.Hour,
	11: 6 * time.Hour,
	12: 12 * time.Hour,
	13: time.Second,
}

func validTime(reference time.Time, unit int, forecastTime int64) (time.Time, error) {
	step, ok := timeUnits[unit]
	if !ok {
		return time.Time{}, fmt.Errorf("unsupported forecast time unit %d", unit)
	}
	return reference.Add(time.Duration(forecastTime) * step), nil
}

// Reader decodes GRIB2 files into fields the extractors understand.
type Reader struct {
	logger output.LoggerPort
}

func NewReader(logger output.LoggerPort) *Reader {
	return &Reader{logger: logger.Named("grib")}
}

func (r *Reader) Read(ctx context.Context, path string) (entity.FieldSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open grib file: %w", entity.ErrInvalidInput, err)
	}
	defer f.Close()

	messages, err := griblib.ReadMessages(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode grib file %s: %w", entity.ErrInvalidInput, path, err)
	}

	var fields entity.FieldSet
	for idx, m := range messages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		field, ok, err := r.toField(m)
		if err != nil {
			r.logger.Warn("Skipping GRIB message", "index", idx, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if _, dup := fields.Get(field.ShortName); dup {
			r.logger.Debug("Duplicate GRIB variable, keeping first", "variable", field.ShortName, "index", idx)
			continue
		}
		fields = append(fields, field)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no msl or 2t field in %s (%d messages)", entity.ErrMissingVariable, path, len(messages))
	}

	r.logger.Info("GRIB file read", "path", path, "messages", len(messages), "fields", fields.Names())
	return fields, nil
}

func (r *Reader) toField(m *griblib.Message) (entity.Field, bool, error) {
	prod := productOf(m)
	known, ok := lookup(prod)
	if !ok {
		r.logger.Debug("Skipping GRIB message",
			"discipline", prod.param.discipline,
			"category", prod.param.category,
			"number", prod.param.number,
			"surface", prod.param.surfaceType,
			"level", prod.level)
		return entity.Field{}, false, nil
	}

	if int(m.Section3.TemplateNumber) != gridTemplateLatLon {
		return entity.Field{}, false, fmt.Errorf("%s uses grid template %d, only regular lat/lon is supported", known.shortName, m.Section3.TemplateNumber)
	}

	var g griblib.Grid0
	switch def := any(m.Section3.Definition).(type) {
	case *griblib.Grid0:
		g = *def
	case griblib.Grid0:
		g = def
	default:
		return entity.Field{}, false, fmt.Errorf("%s has unexpected grid definition %T", known.shortName, def)
	}

	lats, lons, err := regularLatLon(
		int(g.Ni), int(g.Nj),
		float64(g.La1)/microDegrees, float64(g.Lo1)/microDegrees,
		float64(g.La2)/microDegrees, float64(g.Lo2)/microDegrees,
		uint8(g.ScanningMode),
	)
	if err != nil {
		return entity.Field{}, false, fmt.Errorf("%s: %w", known.shortName, err)
	}

	valid, err := validTime(referenceTime(m.Section1.ReferenceTime), prod.timeUnit, prod.forecastTime)
	if err != nil {
		return entity.Field{}, false, fmt.Errorf("%s: %w", known.shortName, err)
	}

	field := entity.Field{
		ShortName: known.shortName,
		Units:     known.units,
		Ni:        len(lons),
		Nj:        len(lats),
		Lats:      lats,
		Lons:      lons,
		Values:    m.Data(),
		ValidTime: valid,
	}
	if err := field.Validate(); err != nil {
		return entity.Field{}, false, err
	}
	return field, true, nil
}

func referenceTime(t griblib.Time) time.Time {
	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day), int(t.Hour), int(t.Minute), int(t.Second), 0, time.UTC)
}

// regularLatLon expands grid corner points into per-row latitudes and per-column longitudes,
// in the order the values are stored.
func regularLatLon(ni, nj int, la1, lo1, la2, lo2 float64, scanningMode uint8) ([]float64, []float64, error) {
	if ni < 1 || nj < 1 {
		return nil, nil, fmt.Errorf("empty grid %dx%d", nj, ni)
	}
	if scanningMode&scanJConsecutive != 0 {
		return nil, nil, fmt.Errorf("column-major scanning mode %#x is not supported", scanningMode)
	}

	if scanningMode&scanINegative == 0 && lo2 < lo1 {
		lo2 += 360
	}
	if scanningMode&scanINegative != 0 && lo2 > lo1 {
		lo2 -= 360
	}

	lats := make([]float64, nj)
	for j := range lats {
		lats[j] = la1
		if nj > 1 {
			lats[j] = la1 + float64(j)*(la2-la1)/float64(nj-1)
		}
	}

	lons := make([]float64, ni)
	for i := range lons {
		lons[i] = lo1
		if ni > 1 {
			lons[i] = lo1 + float64(i)*(lo2-lo1)/float64(ni-1)
		}
	}

	return lats, lons, nil
}
