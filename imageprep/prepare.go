// Package imageprep turns a user-supplied photo into the payload the analysis
// API accepts: downscaled to fit 1024x1024, re-encoded as JPEG, base64 encoded.
package imageprep

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
)

const (
	// MaxDimension bounds both sides of the prepared image. Phone photos are
	// routinely several megapixels; the model doesn't need more than this.
	MaxDimension = 1024

	// JPEGQuality matches the 0.7 canvas encode quality of the capture flow.
	JPEGQuality = 70
)

// Payload is a prepared image ready for transmission. Data holds only the
// base64 bytes, without any data-URL header.
type Payload struct {
	Data     string
	MimeType string
	Width    int
	Height   int
}

type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return fmt.Sprintf("decoding image: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

type EncodeError struct{ Err error }

func (e *EncodeError) Error() string { return fmt.Sprintf("encoding image: %v", e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

type ReadError struct{ Err error }

func (e *ReadError) Error() string { return fmt.Sprintf("reading image: %v", e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// Prepare decodes an arbitrary image, fits it within MaxDimension on both
// sides preserving aspect ratio (never upscaling), and re-encodes it as a
// base64 JPEG. Failures are reported to the caller, never retried.
func Prepare(r io.Reader) (Payload, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, &ReadError{Err: err}
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return Payload{}, &DecodeError{Err: err}
	}

	fitted := scaleToFit(img)
	bounds := fitted.Bounds()

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return Payload{}, &EncodeError{Err: err}
	}

	log.WithField("width", bounds.Dx()).WithField("height", bounds.Dy()).Debugf("prepared image, %d bytes", buf.Len())

	return Payload{
		Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType: "image/jpeg",
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// scaleToFit scales down so both sides fit MaxDimension, rounding the derived
// side to the nearest pixel. In-bounds images pass through untouched.
func scaleToFit(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= MaxDimension && height <= MaxDimension {
		return img
	}

	scale := float64(MaxDimension) / float64(width)
	if height > width {
		scale = float64(MaxDimension) / float64(height)
	}
	newWidth := int(math.Round(float64(width) * scale))
	newHeight := int(math.Round(float64(height) * scale))

	return imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
}
