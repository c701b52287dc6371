// Package config holds the settlement protocol's static, deployment-time
// parameters: circuit artifact coordinates (above) plus the handful of
// scalar knobs spec.md §3 and §6 fix for a given deployment.
package config

import "math/big"

// QuorumNumerator and QuorumDenominator express spec.md §4.3(5)(e)'s
// threshold floor(QuorumNumerator*|V|/QuorumDenominator)+1.
const (
	QuorumNumerator   = 2
	QuorumDenominator = 3
)

// RootRingCapacity is the recent-root ring's fixed size, spec.md §3.
const RootRingCapacity = 64

// SignedMessageDomainTag is the literal string prepended, length-prefixed,
// to the block-proposal digest a validator actually signs (spec.md §3, §9).
var SignedMessageDomainTag = []byte("Polybase")

// Config bundles the protocol's scalar parameters. It is distinct from
// settlement.Config, which is what settlement.New takes; no package in
// this repo reads a Config.
type Config struct {
	ChainID           *big.Int
	RootRingCapacity  int
	QuorumNumerator   int
	QuorumDenominator int
}

// Default returns the parameters spec.md fixes for every deployment.
func Default(chainID *big.Int) Config {
	return Config{
		ChainID:           chainID,
		RootRingCapacity:  RootRingCapacity,
		QuorumNumerator:   QuorumNumerator,
		QuorumDenominator: QuorumDenominator,
	}
}
