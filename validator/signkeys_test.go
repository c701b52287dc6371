package validator

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSignKeysGeneration(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)

	pub, priv := s.HexString()
	c.Assert(pub, qt.Not(qt.Equals), "")
	c.Assert(priv, qt.Not(qt.Equals), "")

	imported := NewSignKeys()
	c.Assert(imported.AddHexKey(priv), qt.IsNil)

	importedPub, importedPriv := imported.HexString()
	c.Assert(importedPub, qt.Equals, pub)
	c.Assert(importedPriv, qt.Equals, priv)
}

func TestAddressRecovery(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)

	expectedAddr, err := AddrFromPublicKey(s.PublicKey())
	c.Assert(err, qt.IsNil)
	c.Assert(expectedAddr.String(), qt.Equals, s.AddressString())

	for _, msg := range [][]byte{[]byte("hello rollup"), []byte("bye rollup")} {
		sig, err := s.SignEthereum(msg)
		c.Assert(err, qt.IsNil)
		recovered, err := AddrFromSignature(msg, sig)
		c.Assert(err, qt.IsNil)
		c.Assert(recovered, qt.Equals, expectedAddr)
	}
}

func TestSignDigestRoundTrip(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)

	var digest [32]byte
	copy(digest[:], []byte("some 32 byte proposal digest!!!"))

	r, sVal, v, err := s.SignDigest(digest)
	c.Assert(err, qt.IsNil)

	recovered, err := RecoverSigner(digest, r, sVal, v)
	c.Assert(err, qt.IsNil)
	c.Assert(recovered, qt.Equals, s.Address())
}
