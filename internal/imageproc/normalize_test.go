package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeOutputsTargetFrame(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"square", 400, 400},
		{"too wide", 1920, 400},
		{"too tall", 400, 1000},
		{"already 16:9", 320, 180},
		{"tiny", 8, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Normalize(encodePNG(t, tc.w, tc.h))
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}

			img, err := jpeg.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("Output is not a decodable JPEG: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != TargetWidth || b.Dy() != TargetHeight {
				t.Errorf("Expected %dx%d output, got %dx%d", TargetWidth, TargetHeight, b.Dx(), b.Dy())
			}
		})
	}
}

func TestNormalizeAcceptsJPEGInput(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 80))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}

	if _, err := Normalize(buf.Bytes()); err != nil {
		t.Fatalf("Normalize failed on JPEG input: %v", err)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	if _, err := Normalize([]byte("definitely not an image")); err == nil {
		t.Fatal("Expected error for undecodable input")
	}
}

func TestCrop169(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		wantW, wantH int
	}{
		{"exact ratio kept whole", 1600, 900, 1600, 900},
		{"wide trims sides", 3200, 900, 1600, 900},
		{"tall trims top and bottom", 1600, 1800, 1600, 900},
		{"square trims to band", 900, 900, 900, 506},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bounds := image.Rect(0, 0, tc.w, tc.h)
			got := crop169(image.NewRGBA(bounds), bounds)
			if got.Dx() != tc.wantW || got.Dy() != tc.wantH {
				t.Errorf("Expected %dx%d crop, got %dx%d", tc.wantW, tc.wantH, got.Dx(), got.Dy())
			}
			if !got.In(bounds) {
				t.Errorf("Crop %v escapes bounds %v", got, bounds)
			}
		})
	}
}

func TestSniffMIME(t *testing.T) {
	if got := SniffMIME(encodePNG(t, 4, 4)); got != "image/png" {
		t.Errorf("Expected image/png, got %q", got)
	}
	if got := SniffMIME([]byte("junk")); got != "image/jpeg" {
		t.Errorf("Expected image/jpeg default, got %q", got)
	}
}
