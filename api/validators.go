package api

import "net/http"

// validators is GET /validators.
func (a *API) validators(w http.ResponseWriter, r *http.Request) {
	snaps, err := a.storage.ValidatorSnapshots()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	resp := ValidatorsResponse{Snapshots: make([]ValidatorSnapshotResponse, len(snaps))}
	for i, snap := range snaps {
		set := make([]string, len(snap.Set))
		for j, addr := range snap.Set {
			set[j] = addr.Hex()
		}
		resp.Snapshots[i] = ValidatorSnapshotResponse{Set: set, ValidFrom: snap.ValidFrom}
	}
	httpWriteJSON(w, resp)
}
