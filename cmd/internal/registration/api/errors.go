package registrationapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/auth/holder"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/locktoken"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

const (
	codeLockUnavailable   = "lock_unavailable"
	codeLockInvalid       = "lock_invalid"
	codeLockNotApplies    = "lock_not_applicable"
	codeLockExpired       = "lock_expired"
	codeNotFound          = "problem_statement_not_found"
	codeFull              = "problem_statement_full"
	codeAlreadyRegistered = "already_registered"
	codeAlreadyLocked     = "already_locked"
	codeNotRegistered     = "not_registered"
	codeInvalidRequest    = "invalid_request"
	codeUnauthorized      = "unauthorized"
	codeServerError       = "server_error"
	codeCanceled          = "request_canceled"
)

// failure is the HTTP rendering of an error kind.
type failure struct {
	status  int
	code    string
	message string
}

// classify maps an error returned by the reservation service or the codec to
// its status and code. ok is false for errors outside the known kinds.
func classify(err error) (f failure, ok bool) {
	switch {
	case err == nil:
		return failure{}, false

	case errors.Is(err, locktoken.ErrConfiguration):
		return failure{http.StatusInternalServerError, codeLockUnavailable, "locking is temporarily unavailable"}, true
	case locktoken.IsUntrusted(err):
		return failure{http.StatusBadRequest, codeLockInvalid, "lock token is invalid"}, true
	case locktoken.IsNotApplicable(err):
		return failure{http.StatusForbidden, codeLockNotApplies, "lock token does not apply to this request"}, true
	case errors.Is(err, locktoken.ErrExpired):
		return failure{http.StatusGone, codeLockExpired, "lock token has expired, request a new lock"}, true
	case errors.Is(err, locktoken.ErrInvalidInput):
		return failure{http.StatusBadRequest, codeInvalidRequest, "invalid lock request"}, true

	case errors.Is(err, reservation.ErrResourceNotFound):
		return failure{http.StatusNotFound, codeNotFound, "problem statement not found"}, true
	case errors.Is(err, reservation.ErrCapacityExceeded):
		return failure{http.StatusConflict, codeFull, "problem statement is full"}, true
	case errors.Is(err, reservation.ErrAlreadyRegistered):
		return failure{http.StatusConflict, codeAlreadyRegistered, "team is already registered"}, true
	case errors.Is(err, reservation.ErrAlreadyLocked):
		return failure{http.StatusConflict, codeAlreadyLocked, "registration already has a problem statement"}, true
	case errors.Is(err, reservation.ErrNotRegistered):
		return failure{http.StatusNotFound, codeNotRegistered, "no registration for this account"}, true
	case errors.Is(err, reservation.ErrInvalidInput):
		return failure{http.StatusBadRequest, codeInvalidRequest, invalidMessage(err)}, true

	case errors.Is(err, holder.ErrUnauthenticated):
		return failure{http.StatusUnauthorized, codeUnauthorized, "authentication required"}, true
	}
	return failure{}, false
}

// invalidMessage surfaces the validation detail carried by an OpError.
func invalidMessage(err error) string {
	var oe reservation.OpError
	if errors.As(err, &oe) && oe.Msg != "" {
		return oe.Msg
	}
	return "invalid request"
}

// writeServiceError renders err. Unknown errors become 500 server_error and
// are logged under event.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, event string, err error) {
	if f, ok := classify(err); ok {
		if f.status >= http.StatusInternalServerError {
			h.log.Error(event, "err", err, "code", f.code)
		}
		writeError(w, f.status, f.code, f.message)
		return
	}
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		h.log.Info(event, "err", err, "code", codeCanceled)
		writeError(w, http.StatusServiceUnavailable, codeCanceled, "request canceled")
		return
	}
	h.log.Error(event, "err", err)
	writeError(w, http.StatusInternalServerError, codeServerError, "internal error")
}

// outcome is the metrics label for err.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if f, ok := classify(err); ok {
		return f.code
	}
	return codeServerError
}
