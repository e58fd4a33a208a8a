package gcp

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"iolib/internal/domain"
)

// translate maps a 404 from any Google API to *domain.NotFoundError, keeping
// the server's message. Other errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &domain.NotFoundError{Message: msg}
	}
	return err
}
