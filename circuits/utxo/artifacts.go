package utxo

import (
	"encoding/hex"

	"github.com/shielded-rollup/settlement/circuits"
	"github.com/shielded-rollup/settlement/config"
)

// Artifacts bundles the compiled constraint system and proving/verification
// keys for the UTXO transfer circuit.
var Artifacts = circuits.NewCircuitArtifacts(
	&circuits.Artifact{
		RemoteURL: config.UtxoCircuitURL,
		Hash:      mustDecodeHash(config.UtxoCircuitHash),
	},
	&circuits.Artifact{
		RemoteURL: config.UtxoProvingKeyURL,
		Hash:      mustDecodeHash(config.UtxoProvingKeyHash),
	},
	&circuits.Artifact{
		RemoteURL: config.UtxoVerificationKeyURL,
		Hash:      mustDecodeHash(config.UtxoVerificationKeyHash),
	},
)

func mustDecodeHash(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
