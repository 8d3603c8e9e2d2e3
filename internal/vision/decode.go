package vision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	// Register the still-image containers frames arrive in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// DecodeError reports that an incoming frame payload could not be turned
// into a raster image. It is always surfaced to the caller: a frame that
// fails to decode is not the same thing as a frame in which nothing was
// detected.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode frame: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode frame: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeFrame decodes a base64 still-image payload into a raster image.
// A data URI prefix ("data:image/...;base64,") is stripped when present.
func DecodeFrame(payload string) (image.Image, error) {
	if payload == "" {
		return nil, &DecodeError{Reason: "empty payload"}
	}
	// Raw base64 never contains a comma, so anything before the first one
	// is a data URI prefix.
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Tolerate senders that strip padding.
		raw, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, &DecodeError{Reason: "invalid base64", Err: err}
	}
	return DecodeImageBytes(raw)
}

// DecodeImageBytes decodes raw image container bytes (JPEG, PNG, GIF).
func DecodeImageBytes(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Reason: "empty image buffer"}
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Reason: "unrecognised image data", Err: err}
	}
	tracef("decoded %s frame %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// Downscale resamples an image to the given working resolution. The emotion
// classifier runs on the downscaled raster as a throughput/accuracy
// tradeoff; the pose model always sees the original.
func Downscale(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
