package api

import "net/http"

// currentRoot is GET /root.
func (a *API) currentRoot(w http.ResponseWriter, r *http.Request) {
	root, ok, err := a.storage.CurrentRoot()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	if !ok {
		ErrNoCanonicalRoot.Write(w)
		return
	}
	httpWriteJSON(w, RootResponse{Root: root.String()})
}

// recentRoots is GET /root/recent.
func (a *API) recentRoots(w http.ResponseWriter, r *http.Request) {
	roots, err := a.storage.RecentRoots()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	resp := RecentRootsResponse{Roots: make([]string, len(roots))}
	for i, root := range roots {
		resp.Roots[i] = root.String()
	}
	httpWriteJSON(w, resp)
}
