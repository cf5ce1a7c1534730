package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	thumbWidth  = 320
	thumbHeight = 240
)

// Thumbnailer downsizes annotated result images for the index page.
type Thumbnailer struct {
}

func New() *Thumbnailer {
	return &Thumbnailer{}
}

func (p *Thumbnailer) Thumbnail(ctx context.Context, contentType string, data []byte) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("Thumbnailer - Thumbnail - decodeImage: %w", err)
	}

	thumb := imaging.Thumbnail(img, thumbWidth, thumbHeight, imaging.Lanczos)

	res, err := encodeImage(thumb, contentType)
	if err != nil {
		return nil, fmt.Errorf("Thumbnailer - Thumbnail - encodeImage: %w", err)
	}

	return res, nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("Thumbnailer - decodeImage - imaging.Decode: %w", err)
	}

	return img, nil
}

func encodeImage(img image.Image, contentType string) ([]byte, error) {
	var buf bytes.Buffer
	var format imaging.Format

	switch contentType {
	case "image/png":
		format = imaging.PNG
	default:
		format = imaging.JPEG
	}

	err := imaging.Encode(&buf, img, format)
	if err != nil {
		return nil, fmt.Errorf("Thumbnailer - encodeImage - imaging.Encode: %w", err)
	}

	return buf.Bytes(), nil
}
