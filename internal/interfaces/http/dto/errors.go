package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Dashboard error codes
const (
	// ErrCodeInvalidIdentity is used when the caller identity is missing or malformed
	ErrCodeInvalidIdentity = "ERR_INVALID_IDENTITY"
	// ErrCodeQueryFailure is used when a backing-store query fails
	ErrCodeQueryFailure = "ERR_QUERY_FAILURE"
	// ErrCodeTimeout is used when a computation exceeds the request deadline
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	ErrCodeInvalidIdentity: http.StatusBadRequest,
	ErrCodeQueryFailure:    http.StatusInternalServerError,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to standardized codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"UNAUTHORIZED":     ErrCodeUnauthorized,
	"FORBIDDEN":        ErrCodeForbidden,
	"INVALID_INPUT":    ErrCodeBadRequest,
	"INVALID_IDENTITY": ErrCodeInvalidIdentity,
	"TIMEOUT":          ErrCodeTimeout,
	"UNKNOWN_FIELD":    ErrCodeQueryFailure,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
