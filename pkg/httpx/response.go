package httpx

import (
	"encoding/json"
	"net/http"
)

// Middleware wraps an http.Handler with extra behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to a handler, first middleware outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Problem is an RFC 7807-style error body. Detail is safe for end users;
// upstream internals stay in the logs.
type Problem struct {
	Title  string            `json:"title"`
	Detail string            `json:"detail"`
	Status int               `json:"status"`
	Errors map[string]string `json:"errors,omitempty"` // field -> message, for validation failures
}

// WriteProblem writes a problem-detail error response.
func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	WriteJSON(w, status, Problem{Title: title, Detail: detail, Status: status})
}

// WriteValidationProblem writes a 400 problem response carrying per-field errors.
func WriteValidationProblem(w http.ResponseWriter, errors map[string]string) {
	WriteJSON(w, http.StatusBadRequest, Problem{
		Title:  "Validation Error",
		Detail: "Validation failed",
		Status: http.StatusBadRequest,
		Errors: errors,
	})
}
