package middleware

import (
	"encoding/json"
	"net/http"
)

// Codes returned by middleware rejections, alongside the handler codes.
const (
	codeUnauthorized = "unauthorized"
	codeUnverified   = "unverified"
	codeRateLimited  = "rate_limited"
	codeInternal     = "internal"
)

// errorBody has the shape of handler.MessageEnvelope error responses.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg, Code: code})
}
