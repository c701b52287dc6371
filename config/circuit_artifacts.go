package config

// Circuit artifact coordinates: a download URL and an expected sha256
// content hash, one triple (circuit definition, proving key, verification
// key) per circuit, consumed by circuits.NewCircuitArtifacts.
const (
	UtxoCircuitURL          = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/utxo.ccs"
	UtxoCircuitHash         = "454cbb7ed68415ac2922b31f42379001a3e37ca3e2a0120f4e7253e20965feb"
	UtxoProvingKeyURL       = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/utxo.pk"
	UtxoProvingKeyHash      = "6fe7cdf1efeaffcbc336997461e5a7a419dee4f346280d1ae78d26437b7c5ad"
	UtxoVerificationKeyURL  = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/utxo.vk"
	UtxoVerificationKeyHash = "534920443617757f17f248dd1e32af21303bdeb7acc50ada9efbcfaaf2bc5bd"

	MintCircuitURL          = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/mint.ccs"
	MintCircuitHash         = "8d78b87e1ed6f698eb923cebec4fac8388f3942709a67d3e6ead7e96480ee15"
	MintProvingKeyURL       = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/mint.pk"
	MintProvingKeyHash      = "b6ee2a7a8e6d685e47d9995af312831e4ee41c83c3f21e4c7bcb8c4d0cb91c0"
	MintVerificationKeyURL  = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/mint.vk"
	MintVerificationKeyHash = "16ef672856de871a3974ba7723e04a0b428ee201528020d3d26a166df1312cf"

	BurnCircuitURL          = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/burn.ccs"
	BurnCircuitHash         = "aae1aad5dc09219530df363b012df23c1a69478cff573049f8ca57132b1ad36"
	BurnProvingKeyURL       = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/burn.pk"
	BurnProvingKeyHash      = "7a063a227901e90726bc0a2b68c25214a98365e171e8f0c861f680192aae30f"
	BurnVerificationKeyURL  = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/burn.vk"
	BurnVerificationKeyHash = "58459ffb3d46b69e62ec7295baf5bbc7ff4d6455b6fb48e904f1efd3bdf7524"

	AggregatorCircuitURL          = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/aggregator.ccs"
	AggregatorCircuitHash         = "83ca2614e8f1c532e4a2d3a7dcdf5ca0a08482876f1835292bdcd2526dcb29b"
	AggregatorProvingKeyURL       = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/aggregator.pk"
	AggregatorProvingKeyHash      = "93ddf49b87c2aa25ebf8eb211d7dda4fe3a34b1f9075912d735cccc62375f0b"
	AggregatorVerificationKeyURL  = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/rollup/aggregator.vk"
	AggregatorVerificationKeyHash = "5379ca71444cfa065b9f40a889890f6a715a0a6f54013c165ad1afcce9731ff"
)
