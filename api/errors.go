package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shielded-rollup/settlement/log"
)

// Error is used by handler functions to wrap errors, assigning a unique
// error code and the HTTP status that should be used.
type Error struct {
	Err        error
	Code       int
	HTTPstatus int
}

// MarshalJSON returns a JSON object containing Err.Error() and Code.
// HTTPstatus is never serialized.
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		struct {
			Err  string `json:"error"`
			Code int    `json:"code"`
		}{
			Err:  e.Err.Error(),
			Code: e.Code,
		})
}

// Error returns e.Err's message.
func (e Error) Error() string {
	return e.Err.Error()
}

// Write serializes e as JSON and writes it with e.HTTPstatus.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, string(msg), e.HTTPstatus)
}

// Withf returns a copy of e with the Sprintf-formatted string appended.
func (e Error) Withf(format string, args ...any) Error {
	return Error{Err: fmt.Errorf("%w: %v", e.Err, fmt.Sprintf(format, args...)), Code: e.Code, HTTPstatus: e.HTTPstatus}
}

// WithErr returns a copy of e with err's message appended.
func (e Error) WithErr(err error) Error {
	return Error{Err: fmt.Errorf("%w: %v", e.Err, err.Error()), Code: e.Code, HTTPstatus: e.HTTPstatus}
}
