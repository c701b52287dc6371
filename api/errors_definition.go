//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
//
// Error codes in the 40001-49999 range are the caller's fault and return
// HTTP Status 400 or 404. Error codes 50001-59999 are this service's
// fault and return HTTP Status 500.
//
// NEVER change any of the current error codes, only append new errors
// after the current last 4XXX or 5XXX.
var (
	ErrResourceNotFound     = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody        = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedCommitment  = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed commitment")}
	ErrMalformedNullifier   = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed nullifier")}
	ErrMintNotFound         = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("pending mint not found")}
	ErrBurnNotFound         = Error{Code: 40008, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("pending burn not found")}
	ErrNoCanonicalRoot      = Error{Code: 40009, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("settlement not yet initialized")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)
