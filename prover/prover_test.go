package prover

import (
	"testing"

	"github.com/shielded-rollup/settlement/storage"
	"go.vocdoni.io/dvote/db/metadb"
)

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	return storage.New(metadb.NewTest(t))
}
