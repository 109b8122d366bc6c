package imageio

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/disintegration/imaging"
)

var _ output.ImageLoader = (*Loader)(nil)

const DefaultMaxWidth = 1568

var formats = map[string]struct {
	format    imaging.Format
	mediaType string
}{
	".png":  {imaging.PNG, entity.MediaTypePNG},
	".jpg":  {imaging.JPEG, entity.MediaTypeJPEG},
	".jpeg": {imaging.JPEG, entity.MediaTypeJPEG},
}

// Loader reads chart images and downsizes wide ones before they are sent to a provider.
type Loader struct {
	maxWidth int
	logger   output.LoggerPort
}

// NewLoader disables resizing when maxWidth is not positive.
func NewLoader(maxWidth int, logger output.LoggerPort) *Loader {
	return &Loader{maxWidth: maxWidth, logger: logger}
}

// ValidateExtension accepts .png, .jpg and .jpeg in any case.
func ValidateExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := formats[ext]; !ok {
		return fmt.Errorf("%w: image %q must be .png, .jpg or .jpeg", entity.ErrInvalidInput, path)
	}
	return nil
}

func (l *Loader) Load(ctx context.Context, path string) (entity.ChartImage, error) {
	if err := ValidateExtension(path); err != nil {
		return entity.ChartImage{}, err
	}
	if err := ctx.Err(); err != nil {
		return entity.ChartImage{}, err
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return entity.ChartImage{}, fmt.Errorf("%w: open image: %w", entity.ErrInvalidInput, err)
	}

	origWidth := img.Bounds().Dx()
	if l.maxWidth > 0 && origWidth > l.maxWidth {
		img = imaging.Resize(img, l.maxWidth, 0, imaging.Lanczos)
	}

	f := formats[strings.ToLower(filepath.Ext(path))]

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f.format, imaging.JPEGQuality(90)); err != nil {
		return entity.ChartImage{}, fmt.Errorf("encode image: %w", err)
	}

	chart := entity.ChartImage{
		Data:      buf.Bytes(),
		MediaType: f.mediaType,
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Source:    path,
	}

	if l.logger != nil {
		l.logger.Debug("Chart image loaded",
			"path", path,
			"originalWidth", origWidth,
			"width", chart.Width,
			"height", chart.Height,
			"bytes", len(chart.Data))
	}

	return chart, nil
}
