// Package field wraps the BN254 scalar field, the algebraic domain every
// hash, root, commitment and nullifier in the rollup lives in.
package field

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrOutOfRange is returned when a byte string or big.Int does not encode a
// value strictly less than the BN254 scalar field modulus.
var ErrOutOfRange = errors.New("field: value is not a valid field element")

// Modulus is the BN254 scalar field modulus p.
func Modulus() *big.Int {
	return fr.Modulus()
}

// Element is a canonical, reduced element of the BN254 scalar field.
type Element struct {
	inner fr.Element
}

// Zero is the additive identity.
func Zero() Element { return Element{} }

// One is the multiplicative identity.
func One() Element {
	var e Element
	e.inner.SetOne()
	return e
}

// New builds an Element from a uint64, always in range.
func New(v uint64) Element {
	var e Element
	e.inner.SetUint64(v)
	return e
}

// FromBigInt reduces iv modulo p if it is already canonical (0 <= iv < p);
// out-of-range values are rejected rather than silently wrapped, matching
// the settlement contract's requireValidFieldElement boundary check.
func FromBigInt(iv *big.Int) (Element, error) {
	if iv.Sign() < 0 || iv.Cmp(Modulus()) >= 0 {
		return Element{}, fmt.Errorf("%w: %s", ErrOutOfRange, iv.String())
	}
	var e Element
	e.inner.SetBigInt(iv)
	return e, nil
}

// FromBytes32 decodes 32 little-endian bytes into an Element, rejecting
// values that are not strictly less than the modulus (spec §3: "Any value
// outside [0, p) is rejected at the contract boundary").
func FromBytes32(b [32]byte) (Element, error) {
	iv := new(big.Int)
	// little-endian: reverse into big-endian for math/big.
	be := make([]byte, 32)
	for i := 0; i < 32; i++ {
		be[i] = b[31-i]
	}
	iv.SetBytes(be)
	return FromBigInt(iv)
}

// Bytes32 encodes the element as 32 little-endian bytes, canonical form, per
// spec §6 ("little-endian within a 32-byte word").
func (e Element) Bytes32() [32]byte {
	be := e.inner.Bytes() // big-endian, 32 bytes
	var out [32]byte
	for i := 0; i < 32; i++ {
		out[i] = be[31-i]
	}
	return out
}

// BigInt returns the canonical big.Int representation.
func (e Element) BigInt() *big.Int {
	return e.inner.BigInt(new(big.Int))
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	return e.inner.IsZero()
}

// Equal reports element equality.
func (e Element) Equal(o Element) bool {
	return e.inner.Equal(&o.inner)
}

// Cmp orders elements by their canonical big.Int representation, used only
// for deterministic ordering (e.g. sorting recovered validator addresses is
// done on common.Address, not on Element; this exists for tests/tooling).
func (e Element) Cmp(o Element) int {
	return e.inner.Cmp(&o.inner)
}

// Add returns e + o mod p.
func (e Element) Add(o Element) Element {
	var r Element
	r.inner.Add(&e.inner, &o.inner)
	return r
}

// Sub returns e - o mod p.
func (e Element) Sub(o Element) Element {
	var r Element
	r.inner.Sub(&e.inner, &o.inner)
	return r
}

// Bit returns bit i (0 = least significant) of the canonical representation,
// used to walk the Merkle path bottom-up (spec §4.1: "bit kᵢ ... selects
// whether the sibling is the right or left input").
func (e Element) Bit(i int) uint {
	return e.inner.Bit(uint64(i))
}

// String renders the element in hex, for logs and debug output.
func (e Element) String() string {
	return fmt.Sprintf("0x%s", e.inner.Text(16))
}

// AddressToElement packs a 20-byte Ethereum address into a single field
// element, used for the burn circuit's "to" public input (spec §4.2).
func AddressToElement(addr [20]byte) Element {
	iv := new(big.Int).SetBytes(addr[:])
	e, _ := FromBigInt(iv) // 160 bits always fits under the ~254-bit modulus
	return e
}
