package api

import (
	"context"
	"encoding/hex"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/settlement"
	"github.com/shielded-rollup/settlement/storage"
	"go.vocdoni.io/dvote/db/metadb"
)

type acceptVerifier struct{}

func (acceptVerifier) Verify(context.Context, []field.Element, []byte) error { return nil }

type noopToken struct{}

func (noopToken) TransferFrom(common.Address, *big.Int) error { return nil }
func (noopToken) Transfer(common.Address, *big.Int) error     { return nil }
func (noopToken) ReceiveWithAuthorization(common.Address, *big.Int, uint64, uint64, field.Element, []byte) error {
	return nil
}

func newTestAPI(t *testing.T) (*API, *storage.Storage) {
	t.Helper()
	c := qt.New(t)

	stg := storage.New(metadb.NewTest(t))
	stl, err := settlement.New(settlement.Config{
		Owner: common.HexToAddress("0xaaaa"),
		Token: common.HexToAddress("0xbbbb"),
		Verifier: settlement.Verifiers{
			Aggregate: acceptVerifier{}, Mint: acceptVerifier{}, Burn: acceptVerifier{},
		},
		Transfer:    noopToken{},
		Version:     settlement.ProtocolV4,
		ChainID:     big.NewInt(1337),
		SelfAddress: common.HexToAddress("0xcccc"),
	}, stg)
	c.Assert(err, qt.IsNil)

	a := &API{storage: stg, stl: stl}
	a.initRouter()
	return a, stg
}

func TestRootEndpoints(t *testing.T) {
	c := qt.New(t)
	a, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, RootEndpoint, nil)
	a.Router().ServeHTTP(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound) // no canonical root until Initialize

	c.Assert(a.stl.Initialize(nil, field.New(7)), qt.IsNil)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, RootEndpoint, nil)
	a.Router().ServeHTTP(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Contains, field.New(7).String())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, RecentRootsEndpoint, nil)
	a.Router().ServeHTTP(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
}

func TestMintEndpoint(t *testing.T) {
	c := qt.New(t)
	a, stg := newTestAPI(t)

	commitment := field.New(0x42)
	b := commitment.Bytes32()
	path := "/mint/" + hex.EncodeToString(b[:])

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	a.Router().ServeHTTP(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)

	c.Assert(stg.SetPendingMint(commitment, big.NewInt(500)), qt.IsNil)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, path, nil)
	a.Router().ServeHTTP(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Contains, "500")
}

func TestTxEndpointAbsentWithoutProver(t *testing.T) {
	c := qt.New(t)
	a, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, TxEndpoint, nil)
	a.Router().ServeHTTP(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
}
