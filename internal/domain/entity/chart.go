package entity

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
)

type ChartImage struct {
	Data      []byte
	MediaType string
	Width     int
	Height    int
	Source    string
}

func (c ChartImage) Validate() error {
	if len(c.Data) == 0 {
		return fmt.Errorf("%w: chart image is empty", ErrInvalidInput)
	}
	if c.MediaType != MediaTypePNG && c.MediaType != MediaTypeJPEG {
		return fmt.Errorf("%w: unsupported image media type %q", ErrInvalidInput, c.MediaType)
	}
	return nil
}

func (c ChartImage) Base64() string {
	return base64.StdEncoding.EncodeToString(c.Data)
}

func (c ChartImage) DataURL() string {
	return "data:" + c.MediaType + ";base64," + c.Base64()
}

// FigureMetadata carries what is known about the plotted figure besides its pixels.
type FigureMetadata struct {
	Title  string `json:"title,omitempty"`
	XLabel string `json:"xlabel,omitempty"`
	YLabel string `json:"ylabel,omitempty"`
	Domain string `json:"domain,omitempty"`
}

func (m FigureMetadata) IsEmpty() bool {
	return m.Title == "" && m.XLabel == "" && m.YLabel == "" && m.Domain == ""
}

// PromptSection renders the non-empty metadata fields as a prompt block, or "" when there is nothing to say.
func (m FigureMetadata) PromptSection() string {
	if m.IsEmpty() {
		return ""
	}

	items := []struct{ name, description, value string }{
		{"title", "title of the figure", m.Title},
		{"xlabel", "label of the x axis", m.XLabel},
		{"ylabel", "label of the y axis", m.YLabel},
		{"domain", "geographic domain of the figure", m.Domain},
	}

	var b strings.Builder
	b.WriteString("# FIGURE METADATA\n\n")
	b.WriteString("The following metadata was extracted from the figure:\n")
	for _, item := range items {
		if item.value == "" {
			continue
		}
		fmt.Fprintf(&b, "\n- %s (%s): %s", item.name, item.description, item.value)
	}
	return b.String()
}

// ChartInput is supplied once per request and never mutated afterwards.
type ChartInput struct {
	Image  ChartImage
	Figure FigureMetadata
	Fields FieldSet
}

func (in ChartInput) Validate() error {
	if err := in.Image.Validate(); err != nil {
		return err
	}
	for _, f := range in.Fields {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
