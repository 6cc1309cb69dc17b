// Package frame turns the current camera picture into the artifact sent to the
// recognition service.
package frame

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

const (
	// DefaultQuality matches the browser canvas default for image/jpeg.
	DefaultQuality = 92

	jpegDataURLPrefix = "data:image/jpeg;base64,"
)

// ErrSourceNotReady is returned when the source has no picture yet or reports zero
// dimensions. The caller should skip the tick.
var ErrSourceNotReady = errors.New("video source not ready")

// Source is a live video stream. Frame returns the picture currently shown by the
// stream; its bounds are the native resolution at that instant.
type Source interface {
	Frame() image.Image
}

// Artifact is one encoded, mirrored still image.
type Artifact struct {
	Width   int
	Height  int
	DataURL string
}

// Encoder produces artifacts from a Source.
type Encoder struct {
	quality int
}

// NewEncoder creates an Encoder with the given JPEG quality (1-100). Values out of range
// fall back to DefaultQuality.
func NewEncoder(quality int) *Encoder {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Encoder{quality: quality}
}

// Encode reads the current picture of src, mirrors it horizontally and compresses it.
func (e *Encoder) Encode(src Source) (Artifact, error) {
	img := src.Frame()
	if img == nil {
		return Artifact{}, ErrSourceNotReady
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return Artifact{}, ErrSourceNotReady
	}

	surface := Mirror(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, surface, &jpeg.Options{Quality: e.quality}); err != nil {
		return Artifact{}, fmt.Errorf("failed to encode frame: %w", err)
	}

	return Artifact{
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		DataURL: jpegDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Mirror copies img onto a new surface of the same size, flipped about the vertical axis.
// The result always starts at (0, 0).
func Mirror(img image.Image) *image.RGBA {
	b := img.Bounds()
	w := b.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, w, b.Dy()))

	// x' = w - (x - minX), y' = y - minY
	s2d := f64.Aff3{
		-1, 0, float64(w + b.Min.X),
		0, 1, float64(-b.Min.Y),
	}
	draw.NearestNeighbor.Transform(dst, s2d, img, b, draw.Src, nil)
	return dst
}

// JPEGDataURL wraps raw base64 JPEG data in a self-describing data URL. Data that is
// already a data URL is returned unchanged.
func JPEGDataURL(b64 string) string {
	if strings.HasPrefix(b64, "data:") {
		return b64
	}
	return jpegDataURLPrefix + b64
}

// DecodeDataURL splits a base64 data URL into its media type and decoded bytes.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL has no payload")
	}
	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URL payload: %w", err)
	}
	return mediaType, data, nil
}
