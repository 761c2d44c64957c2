// Package handler implements the HTTP endpoints. Handlers decode and
// validate the request, call one service operation and translate its
// error into a status code; no business rules live here.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/exobase-inc/exo-api/internal/api/response"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/service"
)

var validate = validator.New()

// writeServiceError maps the domain error taxonomy onto HTTP status
// codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var transition *domain.InvalidStatusTransitionError
	var outOfOrder *domain.OutOfOrderLedgerEntryError

	switch {
	case errors.Is(err, service.ErrAccessDenied):
		response.Forbidden(w, "access denied")
	case errors.Is(err, domain.ErrElementNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrConcurrentModification):
		response.Conflict(w, "resource was modified concurrently, retry")
	case errors.As(err, &transition), errors.As(err, &outOfOrder):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		response.ServiceUnavailable(w, "storage unavailable")
	default:
		response.InternalError(w, err.Error())
	}
}
