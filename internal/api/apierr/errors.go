package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/textworld/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes that have no response code counterpart
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeRateLimited    = "RATE_LIMITED"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status a response code is reported with
func Status(code model.ResponseCode) int {
	switch code {
	case model.Success:
		return http.StatusOK
	case model.NotFound:
		return http.StatusNotFound
	case model.BadCredentials:
		return http.StatusUnauthorized
	case model.UsernameTaken:
		return http.StatusConflict
	case model.BadUsernameFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromCode builds the error for a non-success response code
func FromCode(code model.ResponseCode) error {
	return &httpError{Status(code), APIError{Code: code.String(), Message: codeMessage(code)}}
}

func codeMessage(code model.ResponseCode) string {
	switch code {
	case model.NotFound:
		return "Not found"
	case model.BadCredentials:
		return "Invalid username or password"
	case model.UsernameTaken:
		return "Username is taken or already logged in"
	case model.BadUsernameFormat:
		return "Username may only contain letters, digits and spaces"
	case model.UnknownFailure:
		return "Unknown failure"
	default:
		return "Internal server error"
	}
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	code := model.ResponseFromError(err)
	he = &httpError{Status(code), APIError{Code: code.String(), Message: codeMessage(code)}}
	// only not-found messages are passed through to the client
	if code == model.NotFound {
		he.apiError.Message = err.Error()
	}
	return he
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewRateLimitedError creates a too many requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{Code: CodeRateLimited, Message: "Too many requests"}}
}

// NewInternalError creates an internal server error tagged with the failing request
func NewInternalError(requestID string) error {
	return &httpError{http.StatusInternalServerError, APIError{
		Code:      model.InternalError.String(),
		Message:   "Internal server error",
		RequestID: requestID,
	}}
}
