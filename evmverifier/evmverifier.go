// Package evmverifier implements spec §4.4's calldata layout for calling
// the Yul-compiled, code-only verifier contracts (aggregate/mint/burn),
// and a staticcall-based Verifier that drives a real deployment of one.
//
// Uses an ethclient-backed call pattern over a single RPC endpoint, since
// this package's ABI surface is one staticcall rather than a pool
// spanning several providers.
package evmverifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shielded-rollup/settlement/field"
)

// ErrVerificationFailed is returned when the on-chain verifier's
// staticcall reverts or returns a non-zero status, per spec §4.4.
var ErrVerificationFailed = errors.New("evmverifier: verification failed")

// EncodeCalldata concatenates instances (each a 32-byte little-endian
// field element, per spec §6) followed by the raw proof bytes, matching
// the Yul verifier's expected calldata layout: "instances first, then
// proof bytes" (spec §4.4).
func EncodeCalldata(instances []field.Element, proof []byte) []byte {
	out := make([]byte, 0, len(instances)*32+len(proof))
	for _, inst := range instances {
		b := inst.Bytes32()
		out = append(out, b[:]...)
	}
	out = append(out, proof...)
	return out
}

// Verifier abstracts over "run this circuit's verifier against these
// public inputs and this proof".
type Verifier interface {
	Verify(ctx context.Context, instances []field.Element, proof []byte) error
}

// StaticCallVerifier drives a deployed, code-only verifier contract via a
// staticcall, per spec §4.4 ("deployed as a raw contract ... forwards via
// staticcall, and reverts VerificationFailed on non-zero exit").
type StaticCallVerifier struct {
	client   *ethclient.Client
	contract common.Address
}

// NewStaticCallVerifier builds a StaticCallVerifier against an already
// deployed verifier contract.
func NewStaticCallVerifier(client *ethclient.Client, contract common.Address) *StaticCallVerifier {
	return &StaticCallVerifier{client: client, contract: contract}
}

// Verify implements Verifier.
func (v *StaticCallVerifier) Verify(ctx context.Context, instances []field.Element, proof []byte) error {
	calldata := EncodeCalldata(instances, proof)
	msg := ethereum.CallMsg{To: &v.contract, Data: calldata}
	out, err := v.client.CallContract(ctx, msg, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	for _, b := range out {
		if b != 0 {
			return ErrVerificationFailed
		}
	}
	return nil
}
