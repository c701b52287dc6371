package mint

import (
	"encoding/hex"

	"github.com/shielded-rollup/settlement/circuits"
	"github.com/shielded-rollup/settlement/config"
)

// Artifacts bundles the compiled constraint system and proving/verification
// keys for the mint circuit.
var Artifacts = circuits.NewCircuitArtifacts(
	&circuits.Artifact{
		RemoteURL: config.MintCircuitURL,
		Hash:      mustDecodeHash(config.MintCircuitHash),
	},
	&circuits.Artifact{
		RemoteURL: config.MintProvingKeyURL,
		Hash:      mustDecodeHash(config.MintProvingKeyHash),
	},
	&circuits.Artifact{
		RemoteURL: config.MintVerificationKeyURL,
		Hash:      mustDecodeHash(config.MintVerificationKeyHash),
	},
)

func mustDecodeHash(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
