// Package transcode normalizes accepted uploads into the fixed storage
// profile: longest edge bounded at 800px, JPEG at quality 80.
package transcode

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	domain "memi-server/internal/domain/image"
)

const (
	// MaxEdge bounds the longer edge of the stored rendition. Smaller inputs
	// are never upscaled.
	MaxEdge = 800

	// JPEGQuality is the fixed re-encode quality.
	JPEGQuality = 80
)

// Transcoder re-encodes uploads to the fixed profile.
type Transcoder struct{}

var _ domain.Transcoder = (*Transcoder)(nil)

func New() *Transcoder {
	return &Transcoder{}
}

// Transcode decodes the input, resizes it so its longer edge does not exceed
// MaxEdge (aspect preserved) and re-encodes it as JPEG. The returned width,
// height and byte length describe the output, which is what gets persisted.
func (t *Transcoder) Transcode(data []byte) (*domain.Rendition, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	src = bound(src)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	size := src.Bounds().Size()
	return &domain.Rendition{
		Data:   buf.Bytes(),
		Width:  size.X,
		Height: size.Y,
	}, nil
}

func bound(src image.Image) image.Image {
	size := src.Bounds().Size()
	if size.X <= MaxEdge && size.Y <= MaxEdge {
		return src
	}
	if size.X >= size.Y {
		return imaging.Resize(src, MaxEdge, 0, imaging.Lanczos)
	}
	return imaging.Resize(src, 0, MaxEdge, imaging.Lanczos)
}
