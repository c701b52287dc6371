package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// getMint is GET /mint/{commitment}.
func (a *API) getMint(w http.ResponseWriter, r *http.Request) {
	commitment, err := parseFieldParam(chi.URLParam(r, CommitmentURLParam))
	if err != nil {
		ErrMalformedCommitment.WithErr(err).Write(w)
		return
	}
	value, exists, err := a.stl.GetMint(commitment)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	if !exists {
		ErrMintNotFound.Write(w)
		return
	}
	httpWriteJSON(w, MintResponse{Commitment: commitment.String(), Value: value.String()})
}
