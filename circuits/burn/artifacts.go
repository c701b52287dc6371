package burn

import (
	"encoding/hex"

	"github.com/shielded-rollup/settlement/circuits"
	"github.com/shielded-rollup/settlement/config"
)

// Artifacts bundles the compiled constraint system and proving/verification
// keys for the burn circuit.
var Artifacts = circuits.NewCircuitArtifacts(
	&circuits.Artifact{
		RemoteURL: config.BurnCircuitURL,
		Hash:      mustDecodeHash(config.BurnCircuitHash),
	},
	&circuits.Artifact{
		RemoteURL: config.BurnProvingKeyURL,
		Hash:      mustDecodeHash(config.BurnProvingKeyHash),
	},
	&circuits.Artifact{
		RemoteURL: config.BurnVerificationKeyURL,
		Hash:      mustDecodeHash(config.BurnVerificationKeyHash),
	},
)

func mustDecodeHash(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
