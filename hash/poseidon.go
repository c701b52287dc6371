// Package hash provides the single algebraic hash function used everywhere
// a Merkle or commitment hash is required, per spec §2 ("Field & Hash").
package hash

import (
	"fmt"
	"math/big"

	iden3poseidon "github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/shielded-rollup/settlement/field"
)

// maxInputs bounds the chunking below; the underlying iden3 implementation
// supports at most 16 field elements per permutation.
const maxInputs = 256

// Poseidon hashes an arbitrary, non-empty list of field elements, chunking
// into permutations of 16 and folding the chunk hashes together.
func Poseidon(inputs ...field.Element) (field.Element, error) {
	switch {
	case len(inputs) == 0:
		return field.Element{}, fmt.Errorf("hash: no inputs provided")
	case len(inputs) > maxInputs:
		return field.Element{}, fmt.Errorf("hash: too many inputs (%d > %d)", len(inputs), maxInputs)
	}

	toBigInts := func(es []field.Element) []*big.Int {
		out := make([]*big.Int, len(es))
		for i, e := range es {
			out[i] = e.BigInt()
		}
		return out
	}

	var chunkHashes []*big.Int
	for start := 0; start < len(inputs); start += 16 {
		end := start + 16
		if end > len(inputs) {
			end = len(inputs)
		}
		h, err := iden3poseidon.Hash(toBigInts(inputs[start:end]))
		if err != nil {
			return field.Element{}, fmt.Errorf("hash: poseidon chunk: %w", err)
		}
		chunkHashes = append(chunkHashes, h)
	}

	var result *big.Int
	if len(chunkHashes) == 1 {
		result = chunkHashes[0]
	} else {
		var err error
		result, err = iden3poseidon.Hash(chunkHashes)
		if err != nil {
			return field.Element{}, fmt.Errorf("hash: poseidon fold: %w", err)
		}
	}

	// result is already reduced mod the BN254 scalar field by the iden3
	// implementation, so this conversion never fails.
	out, err := field.FromBigInt(result)
	if err != nil {
		return field.Element{}, fmt.Errorf("hash: unexpected out-of-range poseidon output: %w", err)
	}
	return out, nil
}

// Merge is the two-ary form used to combine a node with its sibling while
// walking a Merkle path (spec §4.1: "Poseidon is applied as hash(left,
// right)").
func Merge(left, right field.Element) field.Element {
	h, err := Poseidon(left, right)
	if err != nil {
		// Poseidon(left, right) can only fail on malformed input counts,
		// which is impossible here.
		panic(err)
	}
	return h
}

// Commitment computes a UTXO commitment C = H(value, source, randomness,
// ownerPubKey), per spec §3.
func Commitment(value, source, randomness, ownerPubKey field.Element) field.Element {
	h, err := Poseidon(value, source, randomness, ownerPubKey)
	if err != nil {
		panic(err)
	}
	return h
}
