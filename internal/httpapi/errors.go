package httpapi

import (
	"encoding/json"
	"net/http"
)

// APIError is the JSON body of every failed API call:
//
//	{"error":{"code":"not_found","message":"...","request_id":"..."}}
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError answers with an APIError. code is a stable snake_case
// identifier clients can switch on; message is for people.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	if r != nil {
		e.Error.RequestID = RequestIDFrom(r.Context())
	}
	WriteJSON(w, status, e)
}

