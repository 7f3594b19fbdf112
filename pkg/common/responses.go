// Package common defines the JSON envelope every REST handler responds
// with, plus the pagination helpers for list endpoints.
package common

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "smartfetch/pkg/errors"
)

// APIResponse is the envelope wrapping every response body.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo carries the machine code and human message for a failure.
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MetaInfo carries response metadata outside the data payload.
type MetaInfo struct {
	RequestID    string          `json:"request_id,omitempty"`
	Timestamp    string          `json:"timestamp,omitempty"`
	Version      string          `json:"version,omitempty"`
	Experimental bool            `json:"experimental,omitempty"`
	Pagination   *PaginationInfo `json:"pagination,omitempty"`
}

// PaginationInfo describes the window a list response covers.
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Error codes for failures that do not originate from a DomainError.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidationError = "VALIDATION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// RespondJSON sends data in the envelope; success follows the status class.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// RespondError sends a failure envelope with a code and message.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondErrorWithDetails(w, status, code, message, nil)
}

// RespondErrorWithDetails sends a failure envelope with structured details.
func RespondErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// RespondDomainError sends the envelope for a DomainError, echoing the
// offending input under details.query when provided.
func RespondDomainError(w http.ResponseWriter, err *apperrors.DomainError, query string) {
	details := err.Details
	if query != "" {
		details = make(map[string]interface{}, len(err.Details)+1)
		for k, v := range err.Details {
			details[k] = v
		}
		details["query"] = query
	}
	RespondErrorWithDetails(w, err.StatusCode, err.Code, err.Message, details)
}

// RespondWithMeta sends data plus metadata, stamping the response time when
// the caller has not set one.
func RespondWithMeta(w http.ResponseWriter, status int, data interface{}, meta *MetaInfo) {
	if meta != nil && meta.Timestamp == "" {
		meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	writeJSON(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	})
}

// ParseJSONBody decodes a JSON request body into v, capping the body at
// maxBytes and rejecting fields the target struct does not declare.
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
