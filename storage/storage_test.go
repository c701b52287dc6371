package storage

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/shielded-rollup/settlement/field"
	"go.vocdoni.io/dvote/db/metadb"
)

func TestPendingMintRoundTrip(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))

	commitment := field.New(0xaa)
	_, ok, err := s.GetPendingMint(commitment)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	c.Assert(s.SetPendingMint(commitment, big.NewInt(100)), qt.IsNil)
	amount, ok, err := s.GetPendingMint(commitment)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(amount.Cmp(big.NewInt(100)), qt.Equals, 0)

	c.Assert(s.DeletePendingMint(commitment), qt.IsNil)
	_, ok, err = s.GetPendingMint(commitment)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestPendingBurnRoundTrip(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))

	nullifier := field.New(0xbb)
	recipient := common.HexToAddress("0x1111111111111111111111111111111111111111")

	c.Assert(s.SetPendingBurn(nullifier, recipient, big.NewInt(100)), qt.IsNil)
	to, amount, ok, err := s.GetPendingBurn(nullifier)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(to, qt.Equals, recipient)
	c.Assert(amount.Cmp(big.NewInt(100)), qt.Equals, 0)

	c.Assert(s.DeletePendingBurn(nullifier), qt.IsNil)
	_, _, ok, err = s.GetPendingBurn(nullifier)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestRootRingWrapsAtCapacity(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))

	_, ok, err := s.CurrentRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	genesis := field.New(1)
	c.Assert(s.PushRoot(genesis), qt.IsNil)
	for i := uint64(2); i <= RootRingCapacity+5; i++ {
		c.Assert(s.PushRoot(field.New(i)), qt.IsNil)
	}

	roots, err := s.RecentRoots()
	c.Assert(err, qt.IsNil)
	c.Assert(len(roots), qt.Equals, RootRingCapacity)

	present, err := s.ContainsRoot(genesis)
	c.Assert(err, qt.IsNil)
	c.Assert(present, qt.IsFalse) // evicted

	current, ok, err := s.CurrentRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(current.Equal(field.New(RootRingCapacity+5)), qt.IsTrue)
}

func TestValidatorSnapshotsAppendOnly(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))

	v0 := []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02")}
	c.Assert(s.AppendValidatorSnapshot(ValidatorSnapshot{Set: v0, ValidFrom: 0}), qt.IsNil)

	v1 := []common.Address{common.HexToAddress("0x03")}
	c.Assert(s.AppendValidatorSnapshot(ValidatorSnapshot{Set: v1, ValidFrom: 1000}), qt.IsNil)

	snaps, err := s.ValidatorSnapshots()
	c.Assert(err, qt.IsNil)
	c.Assert(len(snaps), qt.Equals, 2)
	c.Assert(snaps[0].ValidFrom, qt.Equals, uint64(0))
	c.Assert(snaps[1].ValidFrom, qt.Equals, uint64(1000))
}

func TestBlockQueueReservation(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))

	_, _, err := s.NextBlock()
	c.Assert(err, qt.Equals, ErrNoMoreElements)

	b := &QueuedBlock{Height: 7}
	c.Assert(s.PushBlock(b), qt.IsNil)

	got, key, err := s.NextBlock()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Height, qt.Equals, uint64(7))

	// reserved; a second pop sees nothing left to take.
	_, _, err = s.NextBlock()
	c.Assert(err, qt.Equals, ErrNoMoreElements)

	c.Assert(s.MarkBlockDone(key), qt.IsNil)
	_, _, err = s.NextBlock()
	c.Assert(err, qt.Equals, ErrNoMoreElements)
}
