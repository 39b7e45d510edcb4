package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestPNG creates a test PNG image with the specified dimensions.
func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 64, G: 128, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func newTestPreparer(t *testing.T, maxW, maxH int) *Preparer {
	t.Helper()
	opts := DefaultOptions()
	opts.MaxWidth = maxW
	opts.MaxHeight = maxH
	p, err := NewPreparer(opts, nil)
	require.NoError(t, err)
	return p
}

func TestPreparer_PassThroughWithinBounds(t *testing.T) {
	p := newTestPreparer(t, 100, 100)
	data := createTestPNG(t, 80, 40)

	up, err := p.Prepare("cover.png", data)
	require.NoError(t, err)

	assert.Equal(t, "cover.png", up.Filename)
	assert.Equal(t, "image/png", up.ContentType)
	assert.Equal(t, data, up.Data)
	assert.False(t, up.Resized)
	assert.Equal(t, 80, up.Width)
	assert.Equal(t, 40, up.Height)
}

func TestPreparer_ResizesOversizedImages(t *testing.T) {
	tests := []struct {
		name       string
		data       func(t *testing.T) []byte
		filename   string
		wantName   string
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "wide png becomes jpeg",
			data:       func(t *testing.T) []byte { return createTestPNG(t, 400, 200) },
			filename:   "wide.png",
			wantName:   "wide.jpg",
			wantWidth:  100,
			wantHeight: 50,
		},
		{
			name:       "tall jpeg keeps name",
			data:       func(t *testing.T) []byte { return createTestJPEG(t, 100, 300) },
			filename:   "tall.JPEG",
			wantName:   "tall.JPEG",
			wantWidth:  33,
			wantHeight: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPreparer(t, 100, 100)
			up, err := p.Prepare(tt.filename, tt.data(t))
			require.NoError(t, err)

			assert.True(t, up.Resized)
			assert.Equal(t, tt.wantName, up.Filename)
			assert.Equal(t, "image/jpeg", up.ContentType)

			img, format, err := image.Decode(bytes.NewReader(up.Data))
			require.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, tt.wantWidth, img.Bounds().Dx())
			assert.Equal(t, tt.wantHeight, img.Bounds().Dy())
		})
	}
}

func TestPreparer_Rejects(t *testing.T) {
	p := newTestPreparer(t, 100, 100)

	_, err := p.Prepare("empty.png", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.Prepare("notes.txt", []byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	opts := DefaultOptions()
	opts.MaxSourceBytes = 10
	small, err := NewPreparer(opts, nil)
	require.NoError(t, err)
	_, err = small.Prepare("big.png", createTestPNG(t, 20, 20))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestPreparer_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, createTestPNG(t, 10, 10), 0o600))

	p := newTestPreparer(t, 100, 100)
	up, err := p.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", up.Filename)

	_, err = p.Load(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	for name, mutate := range map[string]func(*Options){
		"zero width":    func(o *Options) { o.MaxWidth = 0 },
		"zero height":   func(o *Options) { o.MaxHeight = 0 },
		"quality low":   func(o *Options) { o.Quality = 0 },
		"quality high":  func(o *Options) { o.Quality = 101 },
		"zero max size": func(o *Options) { o.MaxSourceBytes = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			o := DefaultOptions()
			mutate(&o)
			assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
		})
	}
}

func TestJpegName(t *testing.T) {
	assert.Equal(t, "image.jpg", jpegName(""))
	assert.Equal(t, "a.jpg", jpegName("a.webp"))
	assert.Equal(t, "a.jpeg", jpegName("a.jpeg"))
	assert.Equal(t, "noext.jpg", jpegName("noext"))
}
