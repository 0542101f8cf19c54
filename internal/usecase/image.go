package usecase

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/courierlabs/podproof/internal/domain/errors"
	"github.com/courierlabs/podproof/internal/domain/model"
)

// DecodeDataURL parses an embedded image of the form
// "data:image/jpeg;base64,<payload>". Only image media types are accepted;
// anything malformed is a validation failure, never a silent skip.
func DecodeDataURL(s string) (model.ImageData, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return model.ImageData{}, domainErrors.ErrInvalidImageFormat
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return model.ImageData{}, domainErrors.ErrInvalidImageFormat
	}

	mediaType, encoding, _ := strings.Cut(meta, ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return model.ImageData{}, domainErrors.ErrInvalidImageFormat
	}
	if encoding != "base64" {
		return model.ImageData{}, domainErrors.ErrInvalidImageFormat
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return model.ImageData{}, domainErrors.ErrInvalidImageFormat
	}
	if len(raw) == 0 {
		return model.ImageData{}, domainErrors.ErrInvalidImageFormat
	}

	return model.ImageData{MediaType: mediaType, Bytes: raw}, nil
}

// ObjectName derives the logical blob name for an uploaded image. The
// minute-granularity timestamp keeps repeated submissions for the same order
// from colliding, except within the same minute on overwrite-enabled
// backends. That weakness matches the recorded behavior and stays.
func ObjectName(orderNumber, kind string, t time.Time) string {
	return fmt.Sprintf("%s-%s-%s", orderNumber, kind, t.UTC().Format("200601021504"))
}
