package server

import (
	"fmt"
	"net/http"

	"github.com/jonathan/cv-extractor/internal/pipeline"
)

// ErrUploadTooLarge indicates the request body exceeded the configured limit.
type ErrUploadTooLarge struct {
	Limit int64
}

func (e *ErrUploadTooLarge) Error() string {
	return fmt.Sprintf("upload exceeds the %d byte limit", e.Limit)
}

// HTTPStatus returns the API status code for a pipeline outcome kind.
// The HTML page ignores it and always answers 200 with an inline banner.
func HTTPStatus(kind pipeline.Kind) int {
	switch kind {
	case pipeline.KindSuccess:
		return http.StatusOK
	case pipeline.KindMissingUpload, pipeline.KindDocument:
		return http.StatusBadRequest
	case pipeline.KindUpstreamStatus, pipeline.KindMalformedEnvelope:
		return http.StatusBadGateway
	case pipeline.KindTransport:
		return http.StatusGatewayTimeout
	case pipeline.KindInvalidJSON:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
