package api

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/log"
)

// httpWriteJSON writes data as a JSON response body.
func httpWriteJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK writes an empty 200 response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

// parseFieldParam decodes a hex-encoded (optionally 0x-prefixed) 32-byte
// URL path parameter into a field.Element.
func parseFieldParam(raw string) (field.Element, error) {
	raw = strings.TrimPrefix(raw, "0x")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return field.Element{}, err
	}
	if len(b) != 32 {
		return field.Element{}, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	var arr [32]byte
	copy(arr[:], b)
	return field.FromBytes32(arr)
}
