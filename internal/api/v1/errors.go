package v1

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/http/response"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/util"
	"github.com/shelfdesk/shelfdesk/internal/validator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// failure writes err with the status code of its kind.
func (h *Handler) failure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrStorageUnavailable):
		response.ServiceUnavailable(w, r, err)
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(w, r, err)
	case errors.Is(err, validator.ErrInvalidInput), errors.Is(err, util.ErrInvalidDateFormat):
		response.BadRequest(w, r, err)
	case errors.Is(err, circulation.ErrBusinessRule):
		response.Conflict(w, r, err)
	case errors.Is(err, circulation.ErrInvalidCredentials), errors.Is(err, errNoBorrower):
		response.Unauthorized(w, r)
	default:
		response.ServerError(w, r, err)
	}
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &validator.InvalidInputError{Field: "body", Reason: "is not valid JSON: " + err.Error(), Err: err}
	}
	return nil
}
