// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// ErrorDomain is the ErrorInfo domain attached to gRPC statuses.
const ErrorDomain = "match.muzz"

// Classify turns repo/infra errors into *Error values; *Error values and
// context errors pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	switch {
	case errors.As(err, &e):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(KindNotFound, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(KindConflict, "record already exists", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	default:
		return Wrap(KindInternal, "internal error", err)
	}
}

// Map converts core/repo/infra errors into gRPC-friendly status errors.
// The Kind travels as an ErrorInfo detail so clients can branch on it.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")
	}

	kind := KindOf(err)
	st := status.New(GRPCCode(kind), MessageOf(err))
	if withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: string(kind),
		Domain: ErrorDomain,
	}); derr == nil {
		st = withInfo
	}
	return st.Err()
}

// KindFromStatus recovers the Kind from a status produced by Map.
func KindFromStatus(err error) Kind {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			return Kind(info.GetReason())
		}
	}
	return ""
}

func GRPCCode(kind Kind) codes.Code {
	switch kind {
	case KindValidation:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindBlocked, KindNotEligible:
		return codes.PermissionDenied
	case KindInvalidAccountState, KindNothingToUndo:
		return codes.FailedPrecondition
	case KindConflict:
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindBlocked, KindNotEligible:
		return http.StatusForbidden
	case KindInvalidAccountState:
		return http.StatusUnprocessableEntity
	case KindConflict, KindNothingToUndo:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return Map(Validation(msg))
}
