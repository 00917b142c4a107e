package adapter

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork marks failures to reach the remote API: connection errors,
	// timeouts and gateway errors.
	ErrNetwork = errors.New("remote api unreachable")

	// ErrRemoteRejection marks any non-2xx answer of the remote API.
	ErrRemoteRejection = errors.New("remote api rejected the request")

	// ErrSourceUnavailable is returned by Ping when no health probe is
	// configured, so the caller must use another connectivity source.
	ErrSourceUnavailable = errors.New("connectivity source unavailable")

	ErrUnknownCollection   = errors.New("unknown collection")
	ErrUnexpectedResponse  = errors.New("unexpected response body")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnprocessable       = errors.New("unprocessable entity")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
)

// RemoteError is a non-2xx answer of the remote API. Message is the
// "message" field of the error body, or the raw body when it is not JSON.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote api %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes ErrRemoteRejection, the status sentinel and, for gateway
// statuses, ErrNetwork.
func (e *RemoteError) Unwrap() []error {
	errs := []error{ErrRemoteRejection}
	if sentinel, ok := statusSentinels[e.StatusCode]; ok {
		errs = append(errs, sentinel)
	}
	if isGatewayStatus(e.StatusCode) {
		errs = append(errs, ErrNetwork)
	}
	return errs
}

var statusSentinels = map[int]error{
	http.StatusBadRequest:          ErrBadRequest,
	http.StatusUnauthorized:        ErrUnauthorized,
	http.StatusForbidden:           ErrForbidden,
	http.StatusNotFound:            ErrNotFound,
	http.StatusConflict:            ErrConflict,
	http.StatusUnprocessableEntity: ErrUnprocessable,
	http.StatusInternalServerError: ErrInternalServerError,
	http.StatusBadGateway:          ErrBadGateway,
}

func isGatewayStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
