package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "media-transcriber/internal/app/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   ErrorKind
		status int
	}{
		{"missing file", apperrors.Wrapf(apperrors.ErrFileNotFound, "%s", "/tmp/x.mp3"), KindNotFound, http.StatusNotFound},
		{"unknown provider", apperrors.Wrapf(apperrors.ErrProviderNotFound, "%s", "nope"), KindNotFound, http.StatusNotFound},
		{"too large", apperrors.Wrap(apperrors.ErrFileTooLarge, "300MB"), KindTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported", apperrors.Wrap(apperrors.ErrUnsupportedFormat, ".txt"), KindUnsupportedMedia, http.StatusUnsupportedMediaType},
		{"out of range", apperrors.OutOfRange("confidence_threshold", 0, 1), KindValidation, http.StatusUnprocessableEntity},
		{"api error passes through", NewBadRequestError("bad"), KindBadRequest, http.StatusBadRequest},
		{"plain error", fmt.Errorf("disk on fire"), KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError(tt.err)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.HTTPStatus())
		})
	}
	assert.Nil(t, FromError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	apiErr := FromError(fmt.Errorf("password=hunter2"))
	assert.Equal(t, "Internal server error", apiErr.Message)
}
