// Package images prepares local image files for upload as a post's
// featured image.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Upload is an image ready to be attached to a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	Resized     bool
}

// Options bounds what gets uploaded. Images larger than MaxWidth x MaxHeight
// are scaled down to fit and re-encoded as JPEG at Quality.
type Options struct {
	MaxWidth       int
	MaxHeight      int
	Quality        int
	MaxSourceBytes int
}

// DefaultOptions returns the bounds used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxWidth:       1600,
		MaxHeight:      1600,
		Quality:        85,
		MaxSourceBytes: 10 << 20,
	}
}

// Validate checks that the options have usable values.
func (o Options) Validate() error {
	if o.MaxWidth <= 0 || o.MaxHeight <= 0 {
		return fmt.Errorf("%w: bounds must be positive", ErrInvalidOptions)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("%w: quality must be within 1-100", ErrInvalidOptions)
	}
	if o.MaxSourceBytes <= 0 {
		return fmt.Errorf("%w: max source size must be positive", ErrInvalidOptions)
	}
	return nil
}

// Preparer validates and downsizes images before upload.
type Preparer struct {
	opts   Options
	logger *slog.Logger
}

// NewPreparer creates a Preparer. A nil logger uses slog.Default().
func NewPreparer(opts Options, logger *slog.Logger) (*Preparer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Preparer{opts: opts, logger: logger}, nil
}

// Load reads path from disk and prepares it.
func (p *Preparer) Load(path string) (*Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if info.Size() > int64(p.opts.MaxSourceBytes) {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return p.Prepare(filepath.Base(path), data)
}

// Prepare checks that data is a supported image and scales it down when it
// exceeds the configured bounds. Images already within bounds are passed
// through untouched so animated GIFs and lossless PNGs survive.
func (p *Preparer) Prepare(filename string, data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrUnsupportedFormat)
	}
	if len(data) > p.opts.MaxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	contentType, ok := contentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: format %s", ErrUnsupportedFormat, format)
	}

	if cfg.Width <= p.opts.MaxWidth && cfg.Height <= p.opts.MaxHeight {
		return &Upload{
			Filename:    filename,
			ContentType: contentType,
			Data:        data,
			Width:       cfg.Width,
			Height:      cfg.Height,
		}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrProcessingFailed, err)
	}

	// imaging.Fit preserves aspect ratio and never upscales.
	resized := imaging.Fit(img, p.opts.MaxWidth, p.opts.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.opts.Quality}); err != nil {
		return nil, fmt.Errorf("%w: failed to encode JPEG: %v", ErrProcessingFailed, err)
	}

	b := resized.Bounds()
	p.logger.Debug("resized image for upload",
		"filename", filename,
		"from", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"to", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
		"bytes", buf.Len())

	return &Upload{
		Filename:    jpegName(filename),
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		Resized:     true,
	}, nil
}

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

func jpegName(filename string) string {
	if filename == "" {
		return "image.jpg"
	}
	ext := filepath.Ext(filename)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return filename
	}
	return strings.TrimSuffix(filename, ext) + ".jpg"
}
