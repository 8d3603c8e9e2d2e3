package vision

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"
)

func pngPayload(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeFrame(t *testing.T) {
	raw := pngPayload(t, 64, 48)
	b64 := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		payload string
	}{
		{"plain base64", b64},
		{"data URI prefix", "data:image/png;base64," + b64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeFrame(tt.payload)
			if err != nil {
				t.Fatalf("DecodeFrame: %v", err)
			}
			if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
				t.Errorf("bounds = %v, want 64x48", img.Bounds())
			}
		})
	}
}

func TestDecodeFrameFailuresAreTyped(t *testing.T) {
	corrupt := base64.StdEncoding.EncodeToString([]byte("definitely not an image"))

	tests := []struct {
		name    string
		payload string
	}{
		{"empty payload", ""},
		{"invalid base64", "!!!not-base64!!!"},
		{"corrupt magic bytes", corrupt},
		{"empty image buffer", base64.StdEncoding.EncodeToString(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame(tt.payload)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("err = %v, want *DecodeError", err)
			}
		})
	}
}

func TestDecodeImageBytesEmpty(t *testing.T) {
	_, err := DecodeImageBytes(nil)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func TestDownscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 480))
	small := Downscale(src, 320, 240)
	if small.Bounds().Dx() != 320 || small.Bounds().Dy() != 240 {
		t.Errorf("bounds = %v, want 320x240", small.Bounds())
	}

	// Already at the working resolution: returned as-is.
	same := Downscale(small, 320, 240)
	if same != small {
		t.Error("Downscale reallocated an image already at target size")
	}
}
