package source

import (
	"bytes"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// Metadata is the subset of EXIF data the pipeline cares about. Capture
// conditions help support staff interpret quality complaints; nothing in
// the compositing path depends on it.
type Metadata struct {
	CameraMake  string
	CameraModel string
	DateTaken   time.Time
	HasDate     bool
}

// InspectMetadata extracts EXIF metadata from encoded image bytes.
// Extraction failures are expected (screenshots, stripped uploads, PNG
// exports) and are logged at debug level, never surfaced as errors.
func InspectMetadata(data []byte) *Metadata {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Msg("No EXIF metadata available for source image")
		return nil
	}

	m := &Metadata{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}

	// Priority: DateTimeOriginal > CreateDate > ModifyDate
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		m.DateTaken = exifData.DateTimeOriginal()
		m.HasDate = true
	case !exifData.CreateDate().IsZero():
		m.DateTaken = exifData.CreateDate()
		m.HasDate = true
	case !exifData.ModifyDate().IsZero():
		m.DateTaken = exifData.ModifyDate()
		m.HasDate = true
	}

	log.Debug().
		Str("camera_make", m.CameraMake).
		Str("camera_model", m.CameraModel).
		Bool("has_date", m.HasDate).
		Msg("Source image metadata extracted")

	return m
}
