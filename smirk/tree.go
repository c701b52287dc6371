// Package smirk implements the sparse Merkle tree described in spec §4.1:
// a depth-161 binary tree over the BN254 scalar field, hashed with
// Poseidon, that authenticates the set of UTXO commitments. The tree is a
// persistent value — every mutation returns a new handle, and unmodified
// subtrees are shared by construction because nodes are addressed by their
// own hash in the backing key-value store (the "arena-allocated, DAG
// rooted at a version handle" representation suggested by spec §9's design
// notes, here realised with content-addressing instead of integer ids).
//
// Built over a go.vocdoni.io/dvote/db.Database, keyed by a fixed-depth
// path, matching an idempotent-insert, collision-checked leaf semantics:
// inserting the same key twice with the same value is a no-op, inserting
// it with a different value is an error.
package smirk

import (
	"errors"
	"fmt"

	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/hash"
	"go.vocdoni.io/dvote/db"
)

// Depth is the number of levels in the tree, per spec §3 ("A leaf at
// position k ∈ [0, 2^161)").
const Depth = 161

// ErrCollision is returned by Insert when k is already mapped to a
// different, non-empty value.
var ErrCollision = errors.New("smirk: key already mapped to a different value")

// ErrNotFound is returned by Remove when k is absent.
var ErrNotFound = errors.New("smirk: key not present in tree")

// ErrWitnessMismatch names the case of a witness that does not reproduce
// the expected root. No function in this package returns it: Verify
// reports that case as false.
var ErrWitnessMismatch = errors.New("smirk: witness does not reproduce the expected root")

// emptyHashes[l] is the canonical hash of an empty subtree of height l,
// i.e. a subtree with 2^l empty leaves. emptyHashes[0] is the empty leaf
// value itself.
var emptyHashes [Depth + 1]field.Element

func init() {
	emptyHashes[0] = field.Zero()
	for l := 0; l < Depth; l++ {
		emptyHashes[l+1] = hash.Merge(emptyHashes[l], emptyHashes[l])
	}
}

// EmptyHash returns the canonical hash of an empty subtree of height l.
// EmptyHash(Depth) is the root of an empty tree, the rollup's genesis root.
func EmptyHash(l int) field.Element {
	return emptyHashes[l]
}

var nodesKeyPrefix = []byte("n/")

// Tree is a handle on one version of the sparse Merkle tree. The zero value
// is not usable; construct with New.
type Tree struct {
	db   db.Database
	root field.Element
}

// New creates an empty tree backed by the given database. Distinct Tree
// handles obtained from the same database (e.g. via successive Insert
// calls) share all unmodified nodes.
func New(database db.Database) *Tree {
	return &Tree{db: database, root: emptyHashes[Depth]}
}

// Root returns this version's root hash.
func (t *Tree) Root() field.Element {
	return t.root
}

// DB returns the database backing this tree, letting a caller that needs
// to interleave its own writes (e.g. prover, folding several mutations
// into one logical step) open write transactions against the same store.
func (t *Tree) DB() db.Database {
	return t.db
}

// nodeRecord is the on-disk representation of an internal node: the hashes
// of its two children. Leaves (depth 0) are never stored; their "hash" is
// simply their value, computed on the fly while walking the path.
type nodeRecord struct {
	left, right field.Element
}

func nodeKey(h field.Element) []byte {
	b := h.Bytes32()
	key := make([]byte, 0, len(nodesKeyPrefix)+32)
	key = append(key, nodesKeyPrefix...)
	key = append(key, b[:]...)
	return key
}

func (t *Tree) getChildren(h field.Element, depth int) (nodeRecord, error) {
	if h.Equal(emptyHashes[depth]) {
		return nodeRecord{left: emptyHashes[depth-1], right: emptyHashes[depth-1]}, nil
	}
	raw, err := t.db.Get(nodeKey(h))
	if err != nil {
		return nodeRecord{}, fmt.Errorf("smirk: missing internal node at depth %d: %w", depth, err)
	}
	if len(raw) != 64 {
		return nodeRecord{}, fmt.Errorf("smirk: corrupt internal node record (%d bytes)", len(raw))
	}
	var lb, rb [32]byte
	copy(lb[:], raw[:32])
	copy(rb[:], raw[32:])
	left, err := field.FromBytes32(lb)
	if err != nil {
		return nodeRecord{}, fmt.Errorf("smirk: corrupt left child: %w", err)
	}
	right, err := field.FromBytes32(rb)
	if err != nil {
		return nodeRecord{}, fmt.Errorf("smirk: corrupt right child: %w", err)
	}
	return nodeRecord{left: left, right: right}, nil
}

func putChildren(wtx db.WriteTx, h, left, right field.Element) error {
	lb := left.Bytes32()
	rb := right.Bytes32()
	raw := make([]byte, 0, 64)
	raw = append(raw, lb[:]...)
	raw = append(raw, rb[:]...)
	return wtx.Set(nodeKey(h), raw)
}

// path walks from the root down to the leaf at position k, returning the
// co-path siblings (index 0 = adjacent to the leaf, index Depth-1 = at the
// top, just below the root) and the existing leaf value (EmptyHash(0) if
// absent).
func (t *Tree) path(k field.Element) (siblings [Depth]field.Element, leaf field.Element, err error) {
	current := t.root
	for d := Depth; d >= 1; d-- {
		children, gerr := t.getChildren(current, d)
		if gerr != nil {
			return siblings, field.Element{}, gerr
		}
		bit := k.Bit(d - 1)
		var next, sibling field.Element
		if bit == 0 {
			next, sibling = children.left, children.right
		} else {
			next, sibling = children.right, children.left
		}
		siblings[d-1] = sibling
		current = next
	}
	return siblings, current, nil
}

// Witness is a membership or non-membership proof for a single key: the
// 161-element co-path plus the leaf value found there (EmptyHash(0) for a
// non-membership witness), per spec §4.1.
type Witness struct {
	Siblings [Depth]field.Element
	Leaf     field.Element
}

// Prove returns the witness for k's current leaf, whatever it is.
func (t *Tree) Prove(k field.Element) (*Witness, error) {
	siblings, leaf, err := t.path(k)
	if err != nil {
		return nil, err
	}
	return &Witness{Siblings: siblings, Leaf: leaf}, nil
}

// computeRoot recomputes the root that (k, v, siblings) implies, walking
// bottom-up exactly as spec §4.1 describes verify().
func computeRoot(k, v field.Element, siblings [Depth]field.Element) field.Element {
	current := v
	for d := 1; d <= Depth; d++ {
		bit := k.Bit(d - 1)
		sibling := siblings[d-1]
		if bit == 0 {
			current = hash.Merge(current, sibling)
		} else {
			current = hash.Merge(sibling, current)
		}
	}
	return current
}

// Verify recomputes the root implied by (k, v, w) and reports whether it
// matches root, per spec §4.1.
func Verify(root, k, v field.Element, w *Witness) bool {
	return computeRoot(k, v, w.Siblings).Equal(root)
}

// Insert returns a new tree with v stored at position k.
//
// If k already maps to v, Insert is a no-op and returns an equivalent tree
// (same root). If k already maps to a different, non-empty value, Insert
// fails with ErrCollision and the receiver is left untouched, per spec
// §4.1 ("fails if k is already mapped to v' ≠ v").
func (t *Tree) Insert(database db.WriteTx, k, v field.Element) (*Tree, error) {
	siblings, existing, err := t.path(k)
	if err != nil {
		return nil, err
	}
	if !existing.IsZero() {
		if existing.Equal(v) {
			return t, nil // idempotent
		}
		return nil, fmt.Errorf("%w: key %s already holds %s, cannot set %s", ErrCollision, k, existing, v)
	}
	return t.writePath(database, k, v, siblings)
}

// Remove returns a new tree with k's entry deleted.
//
// Fails with ErrNotFound if k is absent, per spec §4.1.
func (t *Tree) Remove(database db.WriteTx, k field.Element) (*Tree, error) {
	siblings, existing, err := t.path(k)
	if err != nil {
		return nil, err
	}
	if existing.IsZero() {
		return nil, fmt.Errorf("%w: key %s", ErrNotFound, k)
	}
	return t.writePath(database, k, emptyHashes[0], siblings)
}

// writePath recomputes and persists every internal node on the path to k
// after its leaf value changes to v, returning the new tree handle.
func (t *Tree) writePath(wtx db.WriteTx, k, v field.Element, siblings [Depth]field.Element) (*Tree, error) {
	current := v
	for d := 1; d <= Depth; d++ {
		bit := k.Bit(d - 1)
		sibling := siblings[d-1]
		var left, right field.Element
		if bit == 0 {
			left, right = current, sibling
		} else {
			left, right = sibling, current
		}
		next := hash.Merge(left, right)
		if err := putChildren(wtx, next, left, right); err != nil {
			return nil, fmt.Errorf("smirk: persist node at depth %d: %w", d, err)
		}
		current = next
	}
	return &Tree{db: t.db, root: current}, nil
}

// Get returns the value currently stored at k, and whether it is present
// (i.e. not the canonical empty leaf).
func (t *Tree) Get(k field.Element) (field.Element, bool, error) {
	_, leaf, err := t.path(k)
	if err != nil {
		return field.Element{}, false, err
	}
	return leaf, !leaf.IsZero(), nil
}
