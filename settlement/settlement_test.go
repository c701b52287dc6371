package settlement

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/shielded-rollup/settlement/evmverifier"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/storage"
	"github.com/shielded-rollup/settlement/validator"
	"go.vocdoni.io/dvote/db/metadb"
)

// acceptVerifier always succeeds; rejectVerifier always fails. Both
// stand in for the on-chain proof verifiers (spec §1's "verification
// circuitry is out of scope here").
type acceptVerifier struct{}

func (acceptVerifier) Verify(context.Context, []field.Element, []byte) error { return nil }

type rejectVerifier struct{}

func (rejectVerifier) Verify(context.Context, []field.Element, []byte) error {
	return evmverifier.ErrVerificationFailed
}

// ledgerToken is an in-memory TokenTransferer fake tracking balances by
// address, enough to exercise Mint/Burn's transfer calls.
type ledgerToken struct {
	balances map[common.Address]*big.Int
}

func newLedgerToken() *ledgerToken {
	return &ledgerToken{balances: make(map[common.Address]*big.Int)}
}

func (l *ledgerToken) TransferFrom(payer common.Address, amount *big.Int) error {
	l.balances[payer] = new(big.Int).Sub(l.balanceOf(payer), amount)
	return nil
}

func (l *ledgerToken) Transfer(recipient common.Address, amount *big.Int) error {
	l.balances[recipient] = new(big.Int).Add(l.balanceOf(recipient), amount)
	return nil
}

func (l *ledgerToken) ReceiveWithAuthorization(payer common.Address, amount *big.Int, _, _ uint64, _ field.Element, _ []byte) error {
	return l.TransferFrom(payer, amount)
}

func (l *ledgerToken) balanceOf(addr common.Address) *big.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	return big.NewInt(0)
}

func newTestSettlement(t *testing.T, numValidators int) (*Settlement, []*validator.SignKeys, *ledgerToken) {
	t.Helper()
	c := qt.New(t)

	keys := make([]*validator.SignKeys, numValidators)
	for i := range keys {
		keys[i] = validator.NewSignKeys()
		c.Assert(keys[i].Generate(), qt.IsNil)
	}

	token := newLedgerToken()
	cfg := Config{
		Owner: common.HexToAddress("0xaaaa"),
		Token: common.HexToAddress("0xbbbb"),
		Verifier: Verifiers{
			Aggregate: acceptVerifier{},
			Mint:      acceptVerifier{},
			Burn:      acceptVerifier{},
		},
		Transfer:    token,
		Version:     ProtocolV3,
		ChainID:     big.NewInt(1337),
		SelfAddress: common.HexToAddress("0xcccc"),
	}
	store := storage.New(metadb.NewTest(t))
	s, err := New(cfg, store)
	c.Assert(err, qt.IsNil)

	addrs := make([]common.Address, numValidators)
	for i, k := range keys {
		addrs[i] = k.Address()
	}
	c.Assert(s.Initialize(addrs, field.New(1)), qt.IsNil)
	c.Assert(s.AddProver(common.HexToAddress("0xdddd")), qt.IsNil)
	return s, keys, token
}

// signBlock signs the H1/H2/D chain for a proposal with the given
// keys, sorted by ascending recovered address as VerifyBlock requires.
func signBlock(t *testing.T, keys []*validator.SignKeys, newRoot, extraHash field.Element, height uint64) []Signature {
	t.Helper()
	c := qt.New(t)
	_, _, digest := ProposalDigest(newRoot, extraHash, height)

	type signed struct {
		addr common.Address
		sig  Signature
	}
	all := make([]signed, len(keys))
	for i, k := range keys {
		r, sVal, v, err := k.SignDigest(digest)
		c.Assert(err, qt.IsNil)
		all[i] = signed{addr: k.Address(), sig: Signature{R: r, S: sVal, V: v}}
	}
	// insertion sort by address, ascending, to satisfy the strictly
	// increasing signer-order check.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && compareAddr(all[j].addr, all[j-1].addr) < 0; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	out := make([]Signature, len(all))
	for i, s := range all {
		out[i] = s.sig
	}
	return out
}

func compareAddr(a, b common.Address) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func emptyUtxoHashes() [18]field.Element {
	var u [18]field.Element
	return u
}

// utxoHashesWithRootRef fills every root_ref slot with root and leaves
// every mb/value slot at zero, for tests that need a block with no
// mints or burns but a recent-root check that actually passes.
func utxoHashesWithRootRef(root field.Element) [18]field.Element {
	u := emptyUtxoHashes()
	for i := 0; i < 18; i += 3 {
		u[i] = root
	}
	return u
}

// TestMintBurnLifecycle exercises S1: a mint is recorded, a burn is
// recorded, and a block that consumes both drains the ledgers and pays
// out the burn recipient.
func TestMintBurnLifecycle(t *testing.T) {
	c := qt.New(t)
	s, keys, token := newTestSettlement(t, 4)
	payer := common.HexToAddress("0x1234")
	recipient := common.HexToAddress("0x5678")

	commitment := field.New(100)
	value := field.New(50)
	source := field.New(1)
	c.Assert(s.Mint(context.Background(), payer, []byte("proof"), commitment, value, source), qt.IsNil)

	got, ok, err := s.GetMint(commitment)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(got.Cmp(big.NewInt(50)), qt.Equals, 0)

	nullifier := field.New(200)
	c.Assert(s.Burn(context.Background(), recipient, []byte("proof"), nullifier, value, source, field.New(0)), qt.IsNil)

	genesis, ok, err := s.store.CurrentRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	utxo := utxoHashesWithRootRef(genesis)
	utxo[1] = commitment
	utxo[2] = value
	utxo[4] = nullifier
	utxo[5] = value

	newRoot := field.New(999)
	extraHash := field.New(0)
	sigs := signBlock(t, keys, newRoot, extraHash, 1)

	req := VerifyBlockRequest{
		AggrProof:     []byte("aggr"),
		AggrInstances: [12]field.Element{},
		OldRoot:       genesis,
		NewRoot:       newRoot,
		UtxoHashes:    utxo,
		ExtraHash:     extraHash,
		Height:        1,
		Signatures:    sigs,
	}
	c.Assert(s.VerifyBlock(context.Background(), common.HexToAddress("0xdddd"), req), qt.IsNil)

	_, ok, err = s.GetMint(commitment)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
	_, _, ok, err = s.GetBurn(nullifier)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
	c.Assert(token.balanceOf(recipient).Cmp(big.NewInt(50)), qt.Equals, 0)

	current, ok, err := s.store.CurrentRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(current.Equal(newRoot), qt.IsTrue)
}

// TestVerifyBlockRejectsStaleOldRoot covers spec §8's old-root boundary.
func TestVerifyBlockRejectsStaleOldRoot(t *testing.T) {
	c := qt.New(t)
	s, keys, _ := newTestSettlement(t, 4)

	utxo := emptyUtxoHashes()
	newRoot := field.New(2)
	extraHash := field.New(0)
	sigs := signBlock(t, keys, newRoot, extraHash, 1)

	req := VerifyBlockRequest{
		OldRoot:    field.New(0xdead),
		NewRoot:    newRoot,
		UtxoHashes: utxo,
		ExtraHash:  extraHash,
		Height:     1,
		Signatures: sigs,
	}
	err := s.VerifyBlock(context.Background(), common.HexToAddress("0xdddd"), req)
	c.Assert(err, qt.Equals, ErrOldRootMismatch)
}

// TestVerifyBlockRejectsQuorumShortfall covers the quorum off-by-one:
// 4 validators give threshold floor(2*4/3)+1 = 3; two signatures must
// fail.
func TestVerifyBlockRejectsQuorumShortfall(t *testing.T) {
	c := qt.New(t)
	s, keys, _ := newTestSettlement(t, 4)

	genesis, _, _ := s.store.CurrentRoot()
	newRoot := field.New(2)
	extraHash := field.New(0)
	sigs := signBlock(t, keys[:2], newRoot, extraHash, 1)

	req := VerifyBlockRequest{
		OldRoot:    genesis,
		NewRoot:    newRoot,
		UtxoHashes: utxoHashesWithRootRef(genesis),
		ExtraHash:  extraHash,
		Height:     1,
		Signatures: sigs,
	}
	err := s.VerifyBlock(context.Background(), common.HexToAddress("0xdddd"), req)
	c.Assert(err, qt.Equals, ErrQuorumNotMet)
}

// TestVerifyBlockRejectsOutOfOrderSigners covers spec §4.3(5)(f)'s
// strictly-increasing signer requirement.
func TestVerifyBlockRejectsOutOfOrderSigners(t *testing.T) {
	c := qt.New(t)
	s, keys, _ := newTestSettlement(t, 4)

	genesis, _, _ := s.store.CurrentRoot()
	newRoot := field.New(2)
	extraHash := field.New(0)
	sigs := signBlock(t, keys, newRoot, extraHash, 1)
	// swap the first two to break strict ordering.
	sigs[0], sigs[1] = sigs[1], sigs[0]

	req := VerifyBlockRequest{
		OldRoot:    genesis,
		NewRoot:    newRoot,
		UtxoHashes: utxoHashesWithRootRef(genesis),
		ExtraHash:  extraHash,
		Height:     1,
		Signatures: sigs,
	}
	err := s.VerifyBlock(context.Background(), common.HexToAddress("0xdddd"), req)
	c.Assert(err, qt.Equals, ErrSignersNotSorted)
}

// TestVerifyBlockRejectsUnknownProver covers the prover-authorization
// gate.
func TestVerifyBlockRejectsUnknownProver(t *testing.T) {
	c := qt.New(t)
	s, keys, _ := newTestSettlement(t, 4)

	genesis, _, _ := s.store.CurrentRoot()
	newRoot := field.New(2)
	extraHash := field.New(0)
	sigs := signBlock(t, keys, newRoot, extraHash, 1)

	req := VerifyBlockRequest{
		OldRoot:    genesis,
		NewRoot:    newRoot,
		UtxoHashes: emptyUtxoHashes(),
		ExtraHash:  extraHash,
		Height:     1,
		Signatures: sigs,
	}
	err := s.VerifyBlock(context.Background(), common.HexToAddress("0x9999"), req)
	c.Assert(err, qt.Equals, ErrNotAProver)
}

// TestVerifyBlockRejectsAggregateProofFailure covers the verifier gate.
func TestVerifyBlockRejectsAggregateProofFailure(t *testing.T) {
	c := qt.New(t)
	s, keys, _ := newTestSettlement(t, 4)
	s.cfg.Verifier.Aggregate = rejectVerifier{}

	genesis, _, _ := s.store.CurrentRoot()
	newRoot := field.New(2)
	extraHash := field.New(0)
	sigs := signBlock(t, keys, newRoot, extraHash, 1)

	req := VerifyBlockRequest{
		OldRoot:    genesis,
		NewRoot:    newRoot,
		UtxoHashes: utxoHashesWithRootRef(genesis),
		ExtraHash:  extraHash,
		Height:     1,
		Signatures: sigs,
	}
	err := s.VerifyBlock(context.Background(), common.HexToAddress("0xdddd"), req)
	c.Assert(err, qt.ErrorIs, ErrVerificationFailed)
}

// TestValidatorSetActivation covers S5-style validator rotation: a
// snapshot with a future validFrom must not apply to an earlier block.
func TestValidatorSetActivation(t *testing.T) {
	c := qt.New(t)
	s, keys, _ := newTestSettlement(t, 4)

	newKeys := make([]*validator.SignKeys, 2)
	newAddrs := make([]common.Address, 2)
	for i := range newKeys {
		newKeys[i] = validator.NewSignKeys()
		c.Assert(newKeys[i].Generate(), qt.IsNil)
		newAddrs[i] = newKeys[i].Address()
	}
	c.Assert(s.SetValidators(100, newAddrs), qt.IsNil)

	genesis, _, _ := s.store.CurrentRoot()
	newRoot := field.New(2)
	extraHash := field.New(0)
	// height 1 < validFrom 100: old validator set is still effective.
	sigs := signBlock(t, keys, newRoot, extraHash, 1)
	req := VerifyBlockRequest{
		OldRoot:    genesis,
		NewRoot:    newRoot,
		UtxoHashes: utxoHashesWithRootRef(genesis),
		ExtraHash:  extraHash,
		Height:     1,
		Signatures: sigs,
	}
	c.Assert(s.VerifyBlock(context.Background(), common.HexToAddress("0xdddd"), req), qt.IsNil)

	// height 100: new validator set is now effective, old signatures
	// must no longer satisfy quorum against it.
	newRoot2 := field.New(3)
	sigsOld := signBlock(t, keys, newRoot2, extraHash, 100)
	req2 := VerifyBlockRequest{
		OldRoot:    newRoot,
		NewRoot:    newRoot2,
		UtxoHashes: utxoHashesWithRootRef(newRoot),
		ExtraHash:  extraHash,
		Height:     100,
		Signatures: sigsOld,
	}
	err := s.VerifyBlock(context.Background(), common.HexToAddress("0xdddd"), req2)
	c.Assert(err, qt.Equals, ErrQuorumNotMet)
}

// TestV4AcceptsZeroRootRef covers the V4 zero-root_ref amendment; V3
// must reject the same block.
func TestV4AcceptsZeroRootRef(t *testing.T) {
	c := qt.New(t)
	s, keys, _ := newTestSettlement(t, 4)
	s.cfg.Version = ProtocolV4

	genesis, _, _ := s.store.CurrentRoot()
	utxo := emptyUtxoHashes()
	utxo[0] = field.Zero() // root_ref slot left at zero padding
	newRoot := field.New(2)
	extraHash := field.New(0)
	sigs := signBlock(t, keys, newRoot, extraHash, 1)

	req := VerifyBlockRequest{
		OldRoot:    genesis,
		NewRoot:    newRoot,
		UtxoHashes: utxo,
		ExtraHash:  extraHash,
		Height:     1,
		Signatures: sigs,
	}
	c.Assert(s.VerifyBlock(context.Background(), common.HexToAddress("0xdddd"), req), qt.IsNil)
}

func TestV3RejectsZeroRootRef(t *testing.T) {
	c := qt.New(t)
	s, keys, _ := newTestSettlement(t, 4)
	c.Assert(s.cfg.Version, qt.Equals, ProtocolV3)

	genesis, _, _ := s.store.CurrentRoot()
	utxo := emptyUtxoHashes()
	utxo[0] = field.Zero()
	newRoot := field.New(2)
	extraHash := field.New(0)
	sigs := signBlock(t, keys, newRoot, extraHash, 1)

	req := VerifyBlockRequest{
		OldRoot:    genesis,
		NewRoot:    newRoot,
		UtxoHashes: utxo,
		ExtraHash:  extraHash,
		Height:     1,
		Signatures: sigs,
	}
	err := s.VerifyBlock(context.Background(), common.HexToAddress("0xdddd"), req)
	c.Assert(err, qt.Equals, ErrInvalidRecentRoots)
}

func TestMintExistsRejectsDuplicate(t *testing.T) {
	c := qt.New(t)
	s, _, _ := newTestSettlement(t, 4)
	payer := common.HexToAddress("0x1234")
	commitment := field.New(100)

	c.Assert(s.Mint(context.Background(), payer, []byte("proof"), commitment, field.New(1), field.New(1)), qt.IsNil)
	err := s.Mint(context.Background(), payer, []byte("proof"), commitment, field.New(1), field.New(1))
	c.Assert(err, qt.Equals, ErrMintExists)
}
