package source

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// Validate runs the lightweight validity check on resolved image bytes:
// size within [minBytes, maxBytes] and a parseable raster header. It returns
// the decoded dimensions so callers can complete lazy resolution without a
// full pixel decode.
func Validate(data []byte, minBytes, maxBytes int) (image.Point, error) {
	if len(data) == 0 {
		return image.Point{}, &ValidationError{Type: ErrTypeMissing, Message: "image data is empty"}
	}
	if len(data) < minBytes {
		return image.Point{}, &ValidationError{
			Type:    ErrTypeTooSmall,
			Message: fmt.Sprintf("image is %d bytes, below the %d byte minimum", len(data), minBytes),
		}
	}
	if len(data) > maxBytes {
		return image.Point{}, &ValidationError{
			Type:    ErrTypeTooLarge,
			Message: fmt.Sprintf("image is %d bytes, above the %d byte maximum", len(data), maxBytes),
		}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Point{}, &ValidationError{Type: ErrTypeUndecodable, Message: "image header is not decodable", Err: err}
	}
	return image.Point{X: cfg.Width, Y: cfg.Height}, nil
}
