package settlement

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shielded-rollup/settlement/evmverifier"
	"github.com/shielded-rollup/settlement/field"
)

// ProtocolVersion selects among the handful of behavioral deltas spec §9
// describes across the on-chain contract's upgrade history. Per
// DESIGN_NOTES §9 ("model versions as enum-tagged evaluators sharing
// immutable predecessor logic"), only the recent-root zero-acceptance
// check actually differs across versions; everything else in VerifyBlock
// is shared.
type ProtocolVersion uint8

const (
	ProtocolV1 ProtocolVersion = 1
	ProtocolV2 ProtocolVersion = 2
	ProtocolV3 ProtocolVersion = 3
	ProtocolV4 ProtocolVersion = 4
)

// acceptsZeroRootRef reports whether this version's recent-root check
// treats a zero root_ref slot as valid padding, per spec §4.3(d)'s "V4
// amendment".
func (v ProtocolVersion) acceptsZeroRootRef() bool {
	return v >= ProtocolV4
}

// Verifiers bundles the three circuit verifiers the settlement contract
// calls, per spec §4.3's state field list.
type Verifiers struct {
	Aggregate evmverifier.Verifier
	Mint      evmverifier.Verifier
	Burn      evmverifier.Verifier
}

// TokenTransferer abstracts the stablecoin token this settlement
// contract moves value through. Its EIP-3009/ERC20 implementation is an
// external collaborator, out of scope per spec §1; this interface is the
// only surface this package calls against it.
type TokenTransferer interface {
	// TransferFrom pulls amount of token from payer into the rollup's
	// custody, used by Mint.
	TransferFrom(payer common.Address, amount *big.Int) error
	// Transfer pushes amount of token from the rollup's custody to
	// recipient, used when a block settles a burn. Per spec §3, a
	// recipient of the zero address means the transfer is skipped.
	Transfer(recipient common.Address, amount *big.Int) error
	// ReceiveWithAuthorization pulls amount of token from payer via the
	// token's own EIP-3009 flow, used by MintWithAuthorization (spec
	// §4.3(3)). token3009Sig is forwarded opaquely; validating it is the
	// token's responsibility, an external collaborator per spec §1.
	ReceiveWithAuthorization(payer common.Address, amount *big.Int, validAfter, validBefore uint64, nonce field.Element, token3009Sig []byte) error
}

// Config holds the settlement-protocol parameters that spec §4.3's
// initialize(...) entry point fixes for the contract's lifetime (owner,
// token, verifiers, prover) plus the versioning knob spec §9 calls for.
type Config struct {
	Owner    common.Address
	Token    common.Address
	Verifier Verifiers
	Transfer TokenTransferer
	Version  ProtocolVersion
	ChainID  *big.Int

	// SelfAddress is this settlement instance's own address, used as
	// "verifyingContract" in the EIP-712 domain separator for
	// MintWithAuthorization (spec §4.3(1), §4.3(3)).
	SelfAddress common.Address
}

// Signature is the ABI-level (r, s, v) ECDSA signature shape from spec §6.
type Signature struct {
	R [32]byte
	S [32]byte
	V uint8
}

// VerifyBlockRequest is the argument bundle to VerifyBlock, matching spec
// §6's verifyBlock ABI entry exactly (minus the bytes32[]-vs-[18] framing,
// which Go expresses as a fixed array either way).
type VerifyBlockRequest struct {
	AggrProof     []byte
	AggrInstances [12]field.Element
	OldRoot       field.Element
	NewRoot       field.Element
	UtxoHashes    [18]field.Element
	ExtraHash     field.Element
	Height        uint64
	Signatures    []Signature
}

// uint256BE renders v as a 32-byte big-endian word, the abi.encode shape
// for a uint256.
func uint256BE(v uint64) [32]byte {
	var out [32]byte
	b := new(big.Int).SetUint64(v).Bytes()
	copy(out[32-len(b):], b)
	return out
}

// proposalHash1 computes H1 = keccak(newRoot || height || extraHash), per
// spec §3's block-proposal canonical hash. All three fields are abi-
// encoded as fixed 32-byte words, so the encoding is a plain
// concatenation with no dynamic-type offset table.
func proposalHash1(newRoot, extraHash field.Element, height uint64) [32]byte {
	nr := newRoot.Bytes32()
	eh := extraHash.Bytes32()
	h := uint256BE(height)
	var out [32]byte
	copy(out[:], crypto.Keccak256(nr[:], h[:], eh[:]))
	return out
}

// proposalHash2 computes H2 = keccak(height+1 || H1), spec §3's accept
// message ("the round number is one past the proposed height").
func proposalHash2(h1 [32]byte, height uint64) [32]byte {
	round := uint256BE(height + 1)
	var out [32]byte
	copy(out[:], crypto.Keccak256(round[:], h1[:]))
	return out
}

// polybaseTag is the literal domain-separator string spec §9 requires:
// "the outer layer prepends the literal string 'Polybase' and its length
// as a uint64 big-endian -- a domain separator that differs from EIP-191
// on purpose."
var polybaseTag = []byte("Polybase")

// signedDigest computes D = keccak("Polybase".len_u64_be || "Polybase" ||
// H2), the bytes each validator actually signs (spec §3, §6).
func signedDigest(h2 [32]byte) [32]byte {
	var lenPrefix [8]byte
	lenPrefix[7] = byte(len(polybaseTag)) // len("Polybase") == 8, fits in one byte
	var out [32]byte
	copy(out[:], crypto.Keccak256(lenPrefix[:], polybaseTag, h2[:]))
	return out
}

// ProposalDigest computes the full H1/H2/D chain for a block proposal,
// exposed so a prover/validator node can compute the same digest this
// package verifies against.
func ProposalDigest(newRoot, extraHash field.Element, height uint64) (h1, h2, d [32]byte) {
	h1 = proposalHash1(newRoot, extraHash, height)
	h2 = proposalHash2(h1, height)
	d = signedDigest(h2)
	return h1, h2, d
}
