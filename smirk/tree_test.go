package smirk

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/shielded-rollup/settlement/field"
	"go.vocdoni.io/dvote/db/metadb"
)

func TestEmptyTreeRootIsGenesis(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)
	tr := New(database)
	c.Assert(tr.Root().Equal(EmptyHash(Depth)), qt.IsTrue)
}

func TestInsertProveVerifyRoundTrip(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)
	tr := New(database)

	k := field.New(42)
	v := field.New(1234)

	wtx := database.WriteTx()
	tr2, err := tr.Insert(wtx, k, v)
	c.Assert(err, qt.IsNil)
	c.Assert(wtx.Commit(), qt.IsNil)

	c.Assert(tr2.Root().Equal(tr.Root()), qt.IsFalse)

	w, err := tr2.Prove(k)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Leaf.Equal(v), qt.IsTrue)
	c.Assert(Verify(tr2.Root(), k, v, w), qt.IsTrue)

	// A non-membership witness for an absent key must fail verification
	// against the inserted value, but succeed against the empty leaf.
	other := field.New(99)
	w2, err := tr2.Prove(other)
	c.Assert(err, qt.IsNil)
	c.Assert(w2.Leaf.IsZero(), qt.IsTrue)
	c.Assert(Verify(tr2.Root(), other, v, w2), qt.IsFalse)
	c.Assert(Verify(tr2.Root(), other, field.Zero(), w2), qt.IsTrue)
}

func TestInsertIdempotent(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)
	tr := New(database)

	k, v := field.New(1), field.New(2)
	wtx := database.WriteTx()
	tr2, err := tr.Insert(wtx, k, v)
	c.Assert(err, qt.IsNil)
	c.Assert(wtx.Commit(), qt.IsNil)

	wtx2 := database.WriteTx()
	tr3, err := tr2.Insert(wtx2, k, v)
	c.Assert(err, qt.IsNil)
	c.Assert(wtx2.Commit(), qt.IsNil)
	c.Assert(tr3.Root().Equal(tr2.Root()), qt.IsTrue)
}

func TestInsertCollision(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)
	tr := New(database)

	k := field.New(7)
	wtx := database.WriteTx()
	tr2, err := tr.Insert(wtx, k, field.New(100))
	c.Assert(err, qt.IsNil)
	c.Assert(wtx.Commit(), qt.IsNil)

	wtx2 := database.WriteTx()
	_, err = tr2.Insert(wtx2, k, field.New(200))
	c.Assert(err, qt.ErrorIs, ErrCollision)
	wtx2.Discard()
}

func TestRemoveAbsentFails(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)
	tr := New(database)

	wtx := database.WriteTx()
	_, err := tr.Remove(wtx, field.New(5))
	c.Assert(err, qt.ErrorIs, ErrNotFound)
	wtx.Discard()
}

func TestInsertThenRemoveReturnsOriginalRoot(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)
	tr := New(database)
	originalRoot := tr.Root()

	k, v := field.New(3), field.New(4)

	wtx := database.WriteTx()
	tr2, err := tr.Insert(wtx, k, v)
	c.Assert(err, qt.IsNil)
	c.Assert(wtx.Commit(), qt.IsNil)

	wtx2 := database.WriteTx()
	tr3, err := tr2.Remove(wtx2, k)
	c.Assert(err, qt.IsNil)
	c.Assert(wtx2.Commit(), qt.IsNil)

	c.Assert(tr3.Root().Equal(originalRoot), qt.IsTrue)
}

func TestEmptyHashesChainRule(t *testing.T) {
	c := qt.New(t)
	c.Assert(EmptyHash(0).IsZero(), qt.IsTrue)
	c.Assert(EmptyHash(Depth).Equal(EmptyHash(Depth-1)), qt.IsFalse)
}
