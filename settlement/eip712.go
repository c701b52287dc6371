package settlement

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shielded-rollup/settlement/field"
)

// This file implements exactly spec §4.3(3)'s one EIP-712 typed-data
// digest: MintWithAuthorization's own authorization signature, over the
// contract's own domain (name="Rollup", version="1"). This is distinct
// from, and not to be confused with, spec §3's "Polybase"-framed block
// proposal digest in types.go — the two signing schemes are deliberately
// different (spec §9).

var (
	domainTypeHash = crypto.Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	mintAuthTypeHash = crypto.Keccak256([]byte(
		"MintWithAuthorization(bytes32 commitment,bytes32 value,bytes32 source,address from,uint256 validAfter,uint256 validBefore,bytes32 nonce)"))
	rollupNameHash    = crypto.Keccak256([]byte("Rollup"))
	rollupVersionHash = crypto.Keccak256([]byte("1"))
)

func leftPadAddress(addr common.Address) [32]byte {
	var out [32]byte
	copy(out[12:], addr[:])
	return out
}

// domainSeparator computes EIP-712's domain separator for this contract,
// per spec §4.3(1) ("sets the domain separator (EIP-712 with name=Rollup,
// version=1, current chain id, self address)").
func domainSeparator(chainID *big.Int, verifyingContract common.Address) [32]byte {
	chainWord := uint256BE(chainID.Uint64())
	addrWord := leftPadAddress(verifyingContract)
	var out [32]byte
	copy(out[:], crypto.Keccak256(domainTypeHash, rollupNameHash, rollupVersionHash, chainWord[:], addrWord[:]))
	return out
}

// mintAuthorizationDigest computes the EIP-712 digest
// keccak256(0x1901 || domainSeparator || structHash) for
// MintWithAuthorization's typed struct, per spec §4.3(3).
func mintAuthorizationDigest(
	chainID *big.Int,
	verifyingContract common.Address,
	commitment, value, source field.Element,
	from common.Address,
	validAfter, validBefore uint64,
	nonce field.Element,
) [32]byte {
	c := commitment.Bytes32()
	v := value.Bytes32()
	src := source.Bytes32()
	fromWord := leftPadAddress(from)
	vaWord := uint256BE(validAfter)
	vbWord := uint256BE(validBefore)
	n := nonce.Bytes32()

	structHash := crypto.Keccak256(mintAuthTypeHash, c[:], v[:], src[:], fromWord[:], vaWord[:], vbWord[:], n[:])
	ds := domainSeparator(chainID, verifyingContract)

	var digest [32]byte
	copy(digest[:], crypto.Keccak256([]byte{0x19, 0x01}, ds[:], structHash))
	return digest
}
