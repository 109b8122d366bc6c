package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChartImage_Validate(t *testing.T) {
	assert.ErrorIs(t, ChartImage{MediaType: MediaTypePNG}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, ChartImage{Data: []byte{1}, MediaType: "image/gif"}.Validate(), ErrInvalidInput)
	assert.NoError(t, ChartImage{Data: []byte{1}, MediaType: MediaTypeJPEG}.Validate())
}

func TestChartImage_DataURL(t *testing.T) {
	img := ChartImage{Data: []byte("abc"), MediaType: MediaTypePNG}
	assert.Equal(t, "data:image/png;base64,YWJj", img.DataURL())
}

func TestFigureMetadata_PromptSection(t *testing.T) {
	assert.Empty(t, FigureMetadata{}.PromptSection())

	section := FigureMetadata{Title: "MSLP and 2t", Domain: "Europe"}.PromptSection()
	assert.True(t, strings.HasPrefix(section, "# FIGURE METADATA"))
	assert.Contains(t, section, "- title (title of the figure): MSLP and 2t")
	assert.Contains(t, section, "- domain (geographic domain of the figure): Europe")
	assert.NotContains(t, section, "xlabel")
}

func TestField_Validate(t *testing.T) {
	f := Field{
		ShortName: VariableMeanSeaLevel,
		Ni:        2,
		Nj:        2,
		Lats:      []float64{10, 0},
		Lons:      []float64{0, 10},
		Values:    []float64{1, 2, 3, 4},
	}
	assert.NoError(t, f.Validate())
	assert.Equal(t, 3.0, f.At(1, 0))

	f.Values = f.Values[:3]
	assert.ErrorIs(t, f.Validate(), ErrInvalidInput)
}

func TestFieldSet(t *testing.T) {
	set := FieldSet{{ShortName: "msl"}, {ShortName: "2t"}}

	_, ok := set.Get("2t")
	assert.True(t, ok)
	_, ok = set.Get("tp")
	assert.False(t, ok)
	assert.Equal(t, []string{"2t", "msl"}, set.Names())
}
