package gatewaysdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is an RFC 7807 problem returned by the gateway.
type APIError struct {
	StatusCode int               `json:"-"`
	Title      string            `json:"title"`
	Detail     string            `json:"detail"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Title, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (status %d)", e.Title, e.StatusCode)
}

// IsConflict reports whether the error is a 409 Conflict response.
func (e *APIError) IsConflict() bool { return e.StatusCode == http.StatusConflict }

// IsNotFound reports whether the error is a 404 Not Found response.
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Title == "" {
		apiErr.Title = http.StatusText(resp.StatusCode)
		apiErr.Detail = string(body)
	}
	return apiErr
}
