// Package avatar normalizes uploaded profile pictures. Every accepted image
// is scaled to a fixed square and re-encoded as PNG, so stored avatars never
// carry the uploader's original bytes or metadata.
package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultSize is the edge length, in pixels, of a processed avatar.
const DefaultSize = 250

// ContentType is the MIME type of processed avatars.
const ContentType = "image/png"

// MaxDimension bounds the width and height an upload may declare. Larger
// images are rejected from their header, before any pixels are decoded.
const MaxDimension = 4096

var (
	// ErrUnsupportedFormat is returned for uploads that are not JPEG or PNG.
	ErrUnsupportedFormat = errors.New("avatar must be a jpg, jpeg or png image")

	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("avatar exceeds the maximum upload size")

	// ErrDimensionsTooLarge is returned for images wider or taller than
	// MaxDimension. It wraps ErrTooLarge.
	ErrDimensionsTooLarge = fmt.Errorf("%w: image must be at most %dx%d pixels",
		ErrTooLarge, MaxDimension, MaxDimension)
)

var allowedExtensions = []string{".jpg", ".jpeg", ".png"}

// CheckFilename rejects file names whose extension is not an accepted image type.
func CheckFilename(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(allowedExtensions, ext) {
		return ErrUnsupportedFormat
	}
	return nil
}

// Process decodes a JPEG or PNG image from r, scales it to size x size and
// returns it encoded as PNG. The image is stretched to fill the square.
// The header is checked against MaxDimension before the image is decoded.
func Process(r io.Reader, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError(err)
	}
	if format != "jpeg" && format != "png" {
		return nil, ErrUnsupportedFormat
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, ErrDimensionsTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError(err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeError(err error) error {
	if errors.Is(err, image.ErrFormat) {
		return ErrUnsupportedFormat
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
}
