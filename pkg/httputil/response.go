package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	apperrors "github.com/anishff444/nepwears/pkg/errors"
	"github.com/anishff444/nepwears/pkg/logger"
	"github.com/anishff444/nepwears/pkg/validator"
)

// Response is the JSON envelope every storefront endpoint answers with.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error response for err using the AppError message
// when there is one. Server-side failures are logged and masked.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	writeError(w, r, err, "an internal error occurred", fallback)
}

// WriteErrorMessage is WriteError for shopper-facing actions: the backend's
// message is shown when it is safe to, message otherwise.
func WriteErrorMessage(w http.ResponseWriter, r *http.Request, err error, message string, fallback *slog.Logger) {
	writeError(w, r, err, message, fallback)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, message string, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())
	status := apperrors.HTTPStatus(err)

	code := "INTERNAL_ERROR"
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = "UNAUTHORIZED"
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{
		Error: &ErrorResponse{
			Code:      code,
			Message:   apperrors.UserMessage(err, message),
			RequestID: requestID,
		},
	})
}

// WriteValidationError writes a 400 with field-level messages when err is a
// *validator.ValidationError.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

var resourceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ParseID checks that a path parameter is a plausible backend resource ID
// before it is spliced into an upstream URL. On failure it writes a 400 and
// returns false.
func ParseID(w http.ResponseWriter, param string) (string, bool) {
	if !resourceIDPattern.MatchString(param) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: "invalid id: " + param,
			},
		})
		return "", false
	}
	return param, true
}
