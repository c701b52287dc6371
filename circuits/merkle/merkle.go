// Package merkle recomputes a depth-161 dense sparse-Merkle-tree root
// in-circuit, shared by circuits/utxo (membership of a spent/created
// note) and circuits/aggregator (the old-root/new-root transition).
//
// This is a hand-rolled gadget rather than
// github.com/vocdoni/gnark-crypto-primitives/tree/smt: that library
// verifies an iden3-style SMT, which compresses empty subtrees by
// terminating the path early (its LevIns state machine reads a zero
// sibling as "no node allocated here yet"). smirk.Tree is a dense tree —
// every leaf, including canonical-empty ones, is explicitly hashed all
// 161 levels up to the root (see smirk.EmptyHash's memoized chain), and a
// zero sibling (the empty leaf value, EmptyHash(0)) is an ordinary hash
// input there. Feeding a dense witness into an
// early-termination verifier built around zero-sibling detection would
// silently accept the wrong root on any all-empty subtree. Matching the
// off-circuit tree's own recomputation (smirk.computeRoot) is what keeps
// the two sides consistent, at the cost of one Poseidon call per level
// instead of a variable, often-shorter count.
package merkle

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/poseidon"
	"github.com/consensys/gnark/std/math/bits"
)

// Depth is the number of levels in the tree, matching smirk.Depth.
const Depth = 161

// Root recomputes the root implied by (key, leaf, siblings), walking
// bottom-up exactly as smirk.Tree.computeRoot does off-circuit: siblings[0]
// is adjacent to the leaf, siblings[Depth-1] is just below the root.
func Root(api frontend.API, key, leaf frontend.Variable, siblings [Depth]frontend.Variable) frontend.Variable {
	keyBits := bits.ToBinary(api, key, bits.WithNbDigits(Depth))
	current := leaf
	for d := 0; d < Depth; d++ {
		bit := keyBits[d]
		sibling := siblings[d]
		left := api.Select(bit, sibling, current)
		right := api.Select(bit, current, sibling)
		current = poseidon.Poseidon(api, left, right)
	}
	return current
}
