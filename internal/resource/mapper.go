package resource

import (
	"errors"
	"net/http"

	"github.com/existflow/todoisland/internal/api"
	"github.com/existflow/todoisland/internal/apperr"
)

// Mapper turns a transport error into a normalized error
type Mapper func(err error) *apperr.Error

// DefaultMapper classifies by status-code class: 400 validation, 401/403
// permission, 404 not found, no response network, anything else server.
func DefaultMapper(err error) *apperr.Error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if api.IsNetwork(err) {
		return apperr.New(apperr.KindNetwork, 0, err)
	}

	status, ok := api.StatusOf(err)
	if !ok {
		return apperr.New(apperr.KindServer, 0, err)
	}
	switch status {
	case http.StatusBadRequest:
		return apperr.New(apperr.KindValidation, status, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.New(apperr.KindPermission, status, err)
	case http.StatusNotFound:
		return apperr.New(apperr.KindNotFound, status, err)
	default:
		return apperr.New(apperr.KindServer, status, err)
	}
}
