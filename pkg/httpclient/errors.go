package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/anishff444/nepwears/pkg/errors"
)

// BackendErrorResponse covers the two error bodies the storefront backend
// produces: the flat {"success":false,"message":"..."} envelope and the
// nested {"error":{"code":"...","message":"..."}} form.
type BackendErrorResponse struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an *apperrors.AppError. The backend's message is preserved verbatim so
// it can be shown to the shopper; the service name and status end up in the
// wrapped error chain for logs.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var code, message string
	var body BackendErrorResponse
	if json.Unmarshal(bodyBytes, &body) == nil {
		message = body.Message
		if body.Error != nil {
			code = body.Error.Code
			if body.Error.Message != "" {
				message = body.Error.Message
			}
		}
	}

	appErr := mapBackendError(resp.StatusCode, code, strings.TrimSpace(message))
	detail := strings.TrimSpace(string(bodyBytes))
	if len(detail) > 512 {
		detail = detail[:512]
	}
	appErr.Err = fmt.Errorf("%s returned status %d: %s: %w", serviceName, resp.StatusCode, detail, appErr.Err)
	return appErr
}

// mapBackendError builds the AppError for a backend status. An empty message
// falls back to the HTTP status text.
func mapBackendError(status int, code, message string) *apperrors.AppError {
	if message == "" {
		message = http.StatusText(status)
	}

	var appErr *apperrors.AppError
	switch {
	case status == http.StatusBadRequest:
		appErr = apperrors.InvalidInput(message)
	case status == http.StatusUnauthorized:
		appErr = apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		appErr = apperrors.Forbidden(message)
	case status == http.StatusNotFound:
		appErr = &apperrors.AppError{Code: "NOT_FOUND", Message: message, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusConflict:
		appErr = apperrors.Conflict(message)
	case status == http.StatusGone:
		appErr = apperrors.Gone(message)
	case status == http.StatusUnprocessableEntity:
		appErr = &apperrors.AppError{Code: "UNPROCESSABLE", Message: message, Status: status, Err: apperrors.ErrInvalidInput}
	case status == http.StatusServiceUnavailable:
		appErr = apperrors.ServiceUnavailable(message)
	case status >= 500:
		appErr = apperrors.BadGateway(message)
	default:
		appErr = &apperrors.AppError{Code: "REQUEST_FAILED", Message: message, Status: status, Err: apperrors.ErrInvalidInput}
	}

	if code != "" {
		appErr.Code = code
	}
	return appErr
}
