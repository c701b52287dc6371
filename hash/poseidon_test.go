package hash

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/shielded-rollup/settlement/field"
)

func TestPoseidonDeterministic(t *testing.T) {
	c := qt.New(t)

	a := field.New(1)
	b := field.New(2)

	h1, err := Poseidon(a, b)
	c.Assert(err, qt.IsNil)
	h2, err := Poseidon(a, b)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Equal(h2), qt.IsTrue)

	h3, err := Poseidon(b, a)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Equal(h3), qt.IsFalse)
}

func TestPoseidonNoInputs(t *testing.T) {
	c := qt.New(t)
	_, err := Poseidon()
	c.Assert(err, qt.IsNotNil)
}

func TestMergeMatchesPoseidon(t *testing.T) {
	c := qt.New(t)
	l, r := field.New(10), field.New(20)
	c.Assert(Merge(l, r).Equal(func() field.Element {
		h, _ := Poseidon(l, r)
		return h
	}()), qt.IsTrue)
}
