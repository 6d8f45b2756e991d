// Package imaging scales avatars and story covers before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"hikayat/internal/models"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeTIFF = "image/tiff"
	MIMETypeWebP = "image/webp"
)

var ErrUnknownInterpolator = errors.New("unknown interpolator")

var (
	interpolators = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}

	decoders = map[string]func(io.Reader) (image.Image, error){
		MIMETypeJPEG: jpeg.Decode,
		MIMETypePNG:  png.Decode,
		MIMETypeTIFF: tiff.Decode,
		MIMETypeWebP: webp.Decode,
	}

	// webp has no encoder in x/image, resized webp images are written as png
	encoders = map[string]func(io.Writer, image.Image) error{
		MIMETypeJPEG: func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, &jpeg.Options{Quality: 85}) },
		MIMETypePNG:  png.Encode,
		MIMETypeTIFF: func(w io.Writer, i image.Image) error { return tiff.Encode(w, i, nil) },
	}
)

// Supported reports whether images of mimeType can be resized.
func Supported(mimeType string) bool {
	_, ok := decoders[mimeType]
	return ok
}

func Interpolator(name string) (draw.Interpolator, error) {
	interpolator, ok := interpolators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}
	return interpolator, nil
}

// Resize scales the image down to width keeping the aspect ratio and returns
// the encoded result with its mime type. Images already narrower than width
// are re-encoded at their own size.
func Resize(data []byte, mimeType string, width int, interpolator string) ([]byte, string, error) {
	decode, ok := decoders[mimeType]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", models.ErrUnsupportedMedia, mimeType)
	}

	interpol, err := Interpolator(interpolator)
	if err != nil {
		return nil, "", err
	}

	original, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("ошибка декодирования изображения: %w", errors.Join(models.ErrUnsupportedMedia, err))
	}

	bounds := original.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, "", fmt.Errorf("пустое изображение: %w", models.ErrUnsupportedMedia)
	}

	if width <= 0 || width > bounds.Dx() {
		width = bounds.Dx()
	}
	height := bounds.Dy() * width / bounds.Dx()
	if height == 0 {
		height = 1
	}

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	interpol.Scale(bitmap, bitmap.Bounds(), original, bounds, draw.Over, nil)

	outType := mimeType
	encode, ok := encoders[outType]
	if !ok {
		outType = MIMETypePNG
		encode = encoders[outType]
	}

	var buf bytes.Buffer
	if err := encode(&buf, bitmap); err != nil {
		return nil, "", fmt.Errorf("ошибка кодирования изображения: %w", err)
	}

	return buf.Bytes(), outType, nil
}
