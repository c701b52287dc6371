package api

const (
	// PingEndpoint is the endpoint for checking the API status.
	PingEndpoint = "/ping"

	// RootEndpoint returns the current canonical UTXO-tree root.
	RootEndpoint = "/root"
	// RecentRootsEndpoint returns the recent-root ring's contents.
	RecentRootsEndpoint = "/root/recent"

	// CommitmentURLParam names the {commitment} path segment.
	CommitmentURLParam = "commitment"
	// MintEndpoint is the read path for a pending mint's ledger entry.
	MintEndpoint = "/mint/{" + CommitmentURLParam + "}"

	// NullifierURLParam names the {nullifier} path segment.
	NullifierURLParam = "nullifier"
	// BurnEndpoint is the read path for a pending burn's ledger entry.
	BurnEndpoint = "/burn/{" + NullifierURLParam + "}"

	// ValidatorsEndpoint lists the full validator-set snapshot history.
	ValidatorsEndpoint = "/validators"

	// TxEndpoint accepts a submitted UTXO transaction for batching.
	TxEndpoint = "/tx"
)
