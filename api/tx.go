package api

import (
	"encoding/json"
	"net/http"

	"github.com/shielded-rollup/settlement/prover"
)

// submitTx is POST /tx: accepts a circuits/utxo transaction and queues it
// for the next batch prover.BuildBlock assembles.
func (a *API) submitTx(w http.ResponseWriter, r *http.Request) {
	var req prover.TxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	if err := a.pv.Submit(req); err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, TxSubmissionResponse{Accepted: true})
}
