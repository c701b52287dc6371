package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// getBurn is GET /burn/{nullifier}.
func (a *API) getBurn(w http.ResponseWriter, r *http.Request) {
	nullifier, err := parseFieldParam(chi.URLParam(r, NullifierURLParam))
	if err != nil {
		ErrMalformedNullifier.WithErr(err).Write(w)
		return
	}
	to, value, exists, err := a.stl.GetBurn(nullifier)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	if !exists {
		ErrBurnNotFound.Write(w)
		return
	}
	httpWriteJSON(w, BurnResponse{Nullifier: nullifier.String(), To: to.Hex(), Value: value.String()})
}
