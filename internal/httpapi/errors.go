// internal/httpapi/errors.go
package httpapi

import (
	"errors"
	"net/http"

	"github.com/tamzrod/modbus-gateway/internal/gateway"
	"github.com/tamzrod/modbus-gateway/internal/transport"
)

// statusFor maps the error taxonomy onto HTTP status codes.
// A timeout on the last attempt is reported as 504 even when all attempts were exhausted.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// ---- caller errors ----
	case errors.Is(err, gateway.ErrUnknownField):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrNotWritable):
		return http.StatusForbidden
	case errors.Is(err, gateway.ErrEncodingUnsupported),
		errors.Is(err, gateway.ErrInvalidValue):
		return http.StatusBadRequest

	// ---- device errors ----
	case errors.Is(err, transport.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, transport.ErrTimeout):
		return http.StatusGatewayTimeout
	case transport.IsConnectionError(err),
		errors.Is(err, transport.ErrExhausted),
		errors.Is(err, transport.ErrProtocolException):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
