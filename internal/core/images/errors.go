package images

import "errors"

var (
	// ErrUnsupportedFormat is returned when the source is not a JPEG, PNG, GIF or WebP image.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrImageTooLarge is returned when the source image exceeds the maximum allowed size.
	ErrImageTooLarge = errors.New("source image exceeds size limit")

	// ErrProcessingFailed is returned when resizing or re-encoding fails.
	ErrProcessingFailed = errors.New("image processing failed")

	// ErrInvalidOptions is returned when bounds or quality are out of range.
	ErrInvalidOptions = errors.New("invalid image options")
)
