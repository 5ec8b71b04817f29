package avatar

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 12), B: 128, A: 255})
		}
	}
	return img
}

func TestProcess(t *testing.T) {
	var pngBuf, jpegBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, sampleImage()))
	require.NoError(t, jpeg.Encode(&jpegBuf, sampleImage(), nil))

	for name, input := range map[string][]byte{"png": pngBuf.Bytes(), "jpeg": jpegBuf.Bytes()} {
		t.Run(name, func(t *testing.T) {
			out, err := Process(bytes.NewReader(input), 250)
			require.NoError(t, err)

			decoded, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, image.Rect(0, 0, 250, 250), decoded.Bounds())
		})
	}
}

func TestProcess_Rejects(t *testing.T) {
	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, sampleImage(), nil))

	_, err := Process(bytes.NewReader([]byte("definitely not an image")), 250)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Process(bytes.NewReader(gifBuf.Bytes()), 250)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// pngHeader returns a PNG signature and IHDR chunk claiming the given size.
// The pixel data is absent, so only the header can be decoded.
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestProcess_RejectsOversizedDimensions(t *testing.T) {
	for _, size := range [][2]uint32{{12000, 12000}, {MaxDimension + 1, 1}, {1, MaxDimension + 1}} {
		_, err := Process(bytes.NewReader(pngHeader(size[0], size[1])), 250)
		assert.ErrorIs(t, err, ErrDimensionsTooLarge, "%dx%d", size[0], size[1])
		assert.ErrorIs(t, err, ErrTooLarge, "%dx%d", size[0], size[1])
	}
}

func TestCheckFilename(t *testing.T) {
	for _, name := range []string{"me.jpg", "me.JPEG", "photo.png"} {
		assert.NoError(t, CheckFilename(name), name)
	}
	for _, name := range []string{"me.gif", "me", "notes.pdf", "png"} {
		assert.ErrorIs(t, CheckFilename(name), ErrUnsupportedFormat, name)
	}
}
