package handler

import (
	"errors"
	"net/http"

	"libraryhub/internal/http-api/service"
	"libraryhub/internal/search"
)

// statusForError maps service sentinels onto HTTP status codes. Anything
// unrecognized becomes a generic 500 so internals never leak to the caller.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrBookNotFound),
		errors.Is(err, service.ErrBorrowNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrISBNExists),
		errors.Is(err, service.ErrAlreadyBorrowed),
		errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrBookNotAvailable),
		errors.Is(err, service.ErrInsufficientCopies),
		errors.Is(err, service.ErrAlreadyReturned):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, search.ErrUnavailable):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrAccountLocked):
		return http.StatusTooManyRequests, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
