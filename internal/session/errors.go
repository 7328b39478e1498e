package session

import (
	"errors"
	"net/http"

	"github.com/existflow/todoisland/internal/api"
	"github.com/existflow/todoisland/internal/apperr"
)

// classify maps an authentication call failure. The backend message is kept
// for validation and conflict responses so the user sees what to fix.
func classify(err error) *apperr.Error {
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

	var out *apperr.Error
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		out = apperr.New(apperr.KindInvalidCredentials, status, err)
	case http.StatusConflict:
		out = apperr.New(apperr.KindConflict, status, err)
	case http.StatusBadRequest:
		out = apperr.New(apperr.KindValidation, status, err)
	case http.StatusNotFound:
		out = apperr.New(apperr.KindNotFound, status, err)
	default:
		out = apperr.New(apperr.KindServer, status, err)
	}

	if out.Kind == apperr.KindValidation || out.Kind == apperr.KindConflict {
		if msg := api.MessageOf(err); msg != "" {
			out.Message = msg
		}
	}
	return out
}
