package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// DefaultArtworkSize bounds embedded cover art, in pixels per side.
const DefaultArtworkSize = 600

// ArtworkService prepares cover art for embedding in ID3 tags.
//
//	svc := NewArtworkService()
//	jpegBytes, err := svc.Prepare(ctx, downloaded, DefaultArtworkSize)
type ArtworkService struct{}

// NewArtworkService creates a new ArtworkService.
func NewArtworkService() *ArtworkService {
	return &ArtworkService{}
}

// Prepare decodes data (JPEG, PNG or GIF), shrinks it to fit within
// maxSide x maxSide keeping the aspect ratio, and re-encodes it as JPEG.
// Images already within bounds are only re-encoded.
func (s *ArtworkService) Prepare(ctx context.Context, data []byte, maxSide int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if maxSide > 0 {
		img = fit(img, maxSide, maxSide)
	}
	return encodeJPEG(img)
}

// ResizeImage resizes an image to fit within the given dimensions and
// returns it JPEG-encoded. The Catmull-Rom kernel is used for scaling.
func (s *ArtworkService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return encodeJPEG(fit(img, maxWidth, maxHeight))
}

func fit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = max(1, int(float64(maxHeight)*ratio))
		height = maxHeight
	} else {
		height = max(1, int(float64(maxWidth)/ratio))
		width = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
