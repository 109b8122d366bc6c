package entity

import (
	"fmt"
	"sort"
	"time"
)

const (
	VariableTemperature2m = "2t"
	VariableMeanSeaLevel  = "msl"
)

// Field is a single gridded variable on a regular lat/lon grid.
// Values are row-major: row j (latitude) of Ni longitudes.
type Field struct {
	ShortName string
	Units     string
	Ni        int
	Nj        int
	Lats      []float64
	Lons      []float64
	Values    []float64
	ValidTime time.Time
}

func (f Field) At(j, i int) float64 {
	return f.Values[j*f.Ni+i]
}

func (f Field) Validate() error {
	if f.ShortName == "" {
		return fmt.Errorf("%w: field without short name", ErrInvalidInput)
	}
	if f.Ni < 1 || f.Nj < 1 {
		return fmt.Errorf("%w: field %s has empty grid %dx%d", ErrInvalidInput, f.ShortName, f.Nj, f.Ni)
	}
	if len(f.Lats) != f.Nj || len(f.Lons) != f.Ni {
		return fmt.Errorf("%w: field %s coordinates do not match grid %dx%d", ErrInvalidInput, f.ShortName, f.Nj, f.Ni)
	}
	if len(f.Values) != f.Ni*f.Nj {
		return fmt.Errorf("%w: field %s has %d values, want %d", ErrInvalidInput, f.ShortName, len(f.Values), f.Ni*f.Nj)
	}
	return nil
}

type FieldSet []Field

func (s FieldSet) Get(shortName string) (Field, bool) {
	for _, f := range s {
		if f.ShortName == shortName {
			return f, true
		}
	}
	return Field{}, false
}

func (s FieldSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, f := range s {
		names = append(names, f.ShortName)
	}
	sort.Strings(names)
	return names
}

type PressureCenterType string

const (
	PressureHigh PressureCenterType = "high"
	PressureLow  PressureCenterType = "low"
)

type PressureCenter struct {
	Type        PressureCenterType `json:"type"`
	Latitude    float64            `json:"lat"`
	Longitude   float64            `json:"lon"`
	PressureHPa float64            `json:"pressure_hPa"`
	Intensity   float64            `json:"intensity"`
	Confidence  float64            `json:"confidence"`
	Row         int                `json:"row"`
	Col         int                `json:"col"`
	ValidTime   time.Time          `json:"timestamp"`
}

type TemperaturePoint struct {
	ValueC    float64 `json:"value_c"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type BandMean struct {
	Name  string  `json:"name"`
	MeanC float64 `json:"mean_c"`
}

type TemperatureSummary struct {
	MeanC     float64          `json:"mean_c"`
	StdDevC   float64          `json:"stddev_c"`
	Min       TemperaturePoint `json:"min"`
	Max       TemperaturePoint `json:"max"`
	Bands     []BandMean       `json:"bands,omitempty"`
	ValidTime time.Time        `json:"timestamp"`
}
