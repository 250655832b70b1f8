package fortune

import (
	"errors"
	"net/http"
)

// Not found: the referenced entity id does not exist.
var (
	ErrFortuneNotFound = errors.New("fortune not found")
	ErrAuthorNotFound  = errors.New("author not found")
	ErrTagNotFound     = errors.New("tag not found")
)

// Conflict: a uniqueness constraint was violated. Detected by the store,
// never pre-checked, so concurrent get-or-create races stay correct.
var (
	ErrFortuneExists = errors.New("fortune exists")
	ErrAuthorExists  = errors.New("author exists")
	ErrTagExists     = errors.New("tag exists")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFortuneNotFound) ||
		errors.Is(err, ErrAuthorNotFound) ||
		errors.Is(err, ErrTagNotFound)
}

// IsConflict reports whether err is one of the exists sentinels.
func IsConflict(err error) bool {
	return errors.Is(err, ErrFortuneExists) ||
		errors.Is(err, ErrAuthorExists) ||
		errors.Is(err, ErrTagExists)
}

// ToHTTPStatus maps a domain error to its response status code.
func ToHTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
