package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	p := New()

	thumb, err := p.Thumbnail(context.Background(), "image/png", samplePNG(t, 800, 600))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 320, bounds.Dx())
	assert.Equal(t, 240, bounds.Dy())
}

func TestThumbnail_BadData(t *testing.T) {
	p := New()

	_, err := p.Thumbnail(context.Background(), "image/jpeg", []byte("not an image"))
	assert.Error(t, err)
}
