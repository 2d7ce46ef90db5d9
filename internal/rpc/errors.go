package rpc

import (
	"errors"
	"net/http"

	"github.com/sakif/gaia-lore/internal/apperror"
)

// InternalMessage replaces the text of errors that are not *apperror.AppError.
const InternalMessage = "an internal error occurred"

// errorKinds maps each apperror sentinel to its wire representation.
var errorKinds = []struct {
	sentinel error
	code     int
	status   int
	kind     string
}{
	{apperror.ErrValidation, CodeInvalidParams, http.StatusBadRequest, KindBadRequest},
	{apperror.ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized, KindUnauthorized},
	{apperror.ErrForbidden, CodeForbidden, http.StatusForbidden, KindForbidden},
	{apperror.ErrNotFound, CodeNotFound, http.StatusNotFound, KindNotFound},
	{apperror.ErrConflict, CodeConflict, http.StatusConflict, KindConflict},
	{apperror.ErrUnavailable, CodeUnavailable, http.StatusServiceUnavailable, KindUnavailable},
	{apperror.ErrInternal, CodeInternal, http.StatusInternalServerError, KindInternal},
}

// FromError converts a service error to a JSON-RPC error.
//
// Errors carrying an *apperror.AppError keep its message; anything else is
// reported as an internal error with a generic message so driver errors,
// SQL and file paths never reach the client. The second return value is
// false for those unknown errors so the caller can log them.
func FromError(err error) (*Error, bool) {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr, true
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, k := range errorKinds {
			if errors.Is(err, k.sentinel) {
				return &Error{
					Code:    k.code,
					Message: appErr.Message,
					Data:    &ErrorData{Code: k.kind, HTTPStatus: k.status, Field: appErr.Field},
				}, true
			}
		}
	}

	return &Error{
		Code:    CodeInternal,
		Message: InternalMessage,
		Data:    &ErrorData{Code: KindInternal, HTTPStatus: http.StatusInternalServerError},
	}, false
}

// HTTPStatus is the status a single-call response is sent with.
func (e *Error) HTTPStatus() int {
	if e.Data != nil && e.Data.HTTPStatus != 0 {
		return e.Data.HTTPStatus
	}
	return http.StatusInternalServerError
}

func errParse() *Error {
	return &Error{
		Code:    CodeParse,
		Message: "parse error: request body is not valid JSON",
		Data:    &ErrorData{Code: KindParse, HTTPStatus: http.StatusBadRequest},
	}
}

func errInvalidRequest(message string) *Error {
	return &Error{
		Code:    CodeInvalidRequest,
		Message: message,
		Data:    &ErrorData{Code: KindBadRequest, HTTPStatus: http.StatusBadRequest},
	}
}

func errMethodNotFound(method string) *Error {
	return &Error{
		Code:    CodeMethodNotFound,
		Message: "method not found",
		Data:    &ErrorData{Code: KindNotFound, HTTPStatus: http.StatusNotFound, Method: method},
	}
}

func errInvalidParams(message string) *Error {
	return &Error{
		Code:    CodeInvalidParams,
		Message: message,
		Data:    &ErrorData{Code: KindBadRequest, HTTPStatus: http.StatusBadRequest},
	}
}
