// Package imageproc normalizes generated images into the stored format:
// every image a slide carries is a 16:9 JPEG.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/evanoberholster/imagemeta/imagetype"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// TargetWidth and TargetHeight define the stored 16:9 frame.
const (
	TargetWidth  = 1600
	TargetHeight = 900
)

const jpegQuality = 90

// Normalize decodes raw image bytes, center-crops them to 16:9 and re-encodes
// as JPEG at the target resolution. Providers return arbitrary sizes and
// formats; everything on disk goes through here first.
func Normalize(data []byte) ([]byte, error) {
	img, format, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", err)
	}

	bounds := img.Bounds()
	cropped := crop169(img, bounds)

	out := image.NewRGBA(image.Rect(0, 0, TargetWidth, TargetHeight))
	draw.CatmullRom.Scale(out, out.Bounds(), img, cropped, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	log.Debug().
		Str("input_format", format).
		Int("input_width", bounds.Dx()).
		Int("input_height", bounds.Dy()).
		Int("output_bytes", buf.Len()).
		Msg("Normalized generated image")
	return buf.Bytes(), nil
}

// crop169 returns the largest centered 16:9 window inside bounds.
func crop169(img image.Image, bounds image.Rectangle) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	if w*9 == h*16 {
		return bounds
	}
	if w*9 > h*16 {
		// Too wide: trim the sides.
		cropW := h * 16 / 9
		x0 := bounds.Min.X + (w-cropW)/2
		return image.Rect(x0, bounds.Min.Y, x0+cropW, bounds.Max.Y)
	}
	// Too tall: trim top and bottom.
	cropH := w * 9 / 16
	y0 := bounds.Min.Y + (h-cropH)/2
	return image.Rect(bounds.Min.X, y0, bounds.Max.X, y0+cropH)
}

// decode sniffs the image type before decoding. imagetype reads only the
// header bytes, which avoids a full decode attempt in the wrong format.
func decode(data []byte) (image.Image, string, error) {
	t, err := imagetype.Scan(bytes.NewReader(data))
	if err != nil {
		t = imagetype.ImageUnknown
	}

	switch t {
	case imagetype.ImageJPEG:
		img, err := jpeg.Decode(bytes.NewReader(data))
		return img, t.String(), err
	case imagetype.ImagePNG:
		img, err := png.Decode(bytes.NewReader(data))
		return img, t.String(), err
	default:
		// Fall back to the registered stdlib decoders.
		img, format, err := image.Decode(bytes.NewReader(data))
		return img, format, err
	}
}

// SniffMIME returns the detected MIME type of raw image bytes, defaulting to
// image/jpeg when detection fails.
func SniffMIME(data []byte) string {
	t, err := imagetype.Scan(bytes.NewReader(data))
	if err != nil || t == imagetype.ImageUnknown {
		return "image/jpeg"
	}
	return t.String()
}
