// Command settlementd runs one settlement node: it owns the working
// smirk tree, accepts submitted UTXO transactions over api, periodically
// folds a batch into a signed block proposal via prover, and applies that
// proposal to its own settlement.Settlement state machine.
//
// Flags are parsed, log.Init runs, storage.New opens a metadb-backed
// database, and the higher-level services (prover.Prover, api.API) are
// wired around it.
package main

import (
	"context"
	"flag"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/shielded-rollup/settlement/api"
	"github.com/shielded-rollup/settlement/evmverifier"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/log"
	"github.com/shielded-rollup/settlement/prover"
	"github.com/shielded-rollup/settlement/settlement"
	"github.com/shielded-rollup/settlement/smirk"
	"github.com/shielded-rollup/settlement/storage"
	"github.com/shielded-rollup/settlement/token"
	"github.com/shielded-rollup/settlement/validator"
)

func main() {
	dbPath := flag.String("db", "./settlementd-data", "on-disk database directory")
	host := flag.String("host", "0.0.0.0", "API listen host")
	port := flag.Int("port", 8080, "API listen port")
	logLevel := flag.String("loglevel", "info", "log level: debug, info, warn, error")

	rpc := flag.String("rpc", "http://localhost:8545", "EVM JSON-RPC endpoint for the verifier staticcalls and token transfers")
	chainID := flag.Int64("chainid", 1337, "EVM chain ID")
	aggregateVerifier := flag.String("aggregate-verifier", "", "deployed aggregate-proof verifier contract address")
	mintVerifier := flag.String("mint-verifier", "", "deployed mint-proof verifier contract address")
	burnVerifier := flag.String("burn-verifier", "", "deployed burn-proof verifier contract address")
	tokenAddr := flag.String("token", "", "deployed ERC20/EIP-3009 token contract address")
	ownerAddr := flag.String("owner", "", "settlement contract owner address")
	selfAddr := flag.String("self", "", "this settlement instance's own address (EIP-712 verifyingContract)")
	custodyKey := flag.String("custody-key", "", "hex-encoded private key the rollup's token custody account signs with")

	validatorKey := flag.String("validator-key", "", "hex-encoded private key this node signs block proposals with; generated if empty")
	genesisValidators := flag.String("genesis-validators", "", "comma-separated validator addresses to seed Initialize with, if not already initialized")

	protocolVersion := flag.Int("protocol-version", int(settlement.ProtocolV4), "settlement protocol version (1-4)")
	batchInterval := flag.Duration("batch-interval", 10*time.Second, "how often to attempt building a block from pending transactions")

	flag.Parse()
	log.Init(*logLevel, "stdout", nil)

	database, err := metadb.New(db.TypePebble, *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	stg := storage.New(database)
	tree := smirk.New(database)

	client, err := ethclient.Dial(*rpc)
	if err != nil {
		log.Fatalf("dial rpc: %v", err)
	}

	transferer, err := token.New(client, common.HexToAddress(*tokenAddr), *custodyKey, big.NewInt(*chainID))
	if err != nil {
		log.Fatalf("build token transferer: %v", err)
	}

	cfg := settlement.Config{
		Owner: common.HexToAddress(*ownerAddr),
		Token: common.HexToAddress(*tokenAddr),
		Verifier: settlement.Verifiers{
			Aggregate: evmverifier.NewStaticCallVerifier(client, common.HexToAddress(*aggregateVerifier)),
			Mint:      evmverifier.NewStaticCallVerifier(client, common.HexToAddress(*mintVerifier)),
			Burn:      evmverifier.NewStaticCallVerifier(client, common.HexToAddress(*burnVerifier)),
		},
		Transfer:    transferer,
		Version:     settlement.ProtocolVersion(*protocolVersion),
		ChainID:     big.NewInt(*chainID),
		SelfAddress: common.HexToAddress(*selfAddr),
	}

	stl, err := settlement.New(cfg, stg)
	if err != nil {
		log.Fatalf("build settlement: %v", err)
	}
	if err := maybeInitialize(stl, stg, *genesisValidators); err != nil {
		log.Fatalf("initialize settlement: %v", err)
	}

	signKeys := validator.NewSignKeys()
	if *validatorKey != "" {
		if err := signKeys.AddHexKey(*validatorKey); err != nil {
			log.Fatalf("load validator key: %v", err)
		}
	} else if err := signKeys.Generate(); err != nil {
		log.Fatalf("generate validator key: %v", err)
	}
	log.Infow("validator identity", "address", signKeys.AddressString())
	if err := stl.AddProver(signKeys.Address()); err != nil {
		log.Fatalf("register prover address: %v", err)
	}

	ctx := context.Background()
	pv, err := prover.New(ctx, stg, tree)
	if err != nil {
		log.Fatalf("build prover: %v", err)
	}

	if _, err := api.New(&api.Config{Host: *host, Port: *port, Storage: stg, Settlement: stl, Prover: pv}); err != nil {
		log.Fatalf("start api: %v", err)
	}

	runBatchLoop(ctx, pv, stl, signKeys, *batchInterval)
}

// maybeInitialize seeds the genesis validator set and root the first time
// this node runs against an empty database.
func maybeInitialize(stl *settlement.Settlement, stg *storage.Storage, genesisValidatorsCSV string) error {
	if _, ok, err := stg.CurrentRoot(); err != nil {
		return err
	} else if ok {
		return nil // already initialized in a previous run
	}

	var validators []common.Address
	for _, addr := range strings.Split(genesisValidatorsCSV, ",") {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		validators = append(validators, common.HexToAddress(addr))
	}
	return stl.Initialize(validators, smirk.EmptyHash(smirk.Depth))
}

// runBatchLoop periodically drains the pending-transaction queue into a
// signed block proposal and applies it to stl directly, the in-process
// stand-in for submitting the equivalent verifyBlock transaction to a
// deployed settlement contract.
func runBatchLoop(ctx context.Context, pv *prover.Prover, stl *settlement.Settlement, signKeys *validator.SignKeys, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var height uint64
	for range ticker.C {
		req, keys, err := pv.BuildBlock(ctx, height, field.Zero())
		if err != nil {
			log.Errorw("build block failed", "error", err)
			continue
		}
		if err := prover.SignBlock(req, signKeys); err != nil {
			log.Errorw("sign block failed", "error", err)
			if err := pv.ReleaseBatch(keys); err != nil {
				log.Errorw("release batch failed", "error", err)
			}
			continue
		}
		if err := stl.VerifyBlock(ctx, signKeys.Address(), *req); err != nil {
			log.Errorw("verify block failed", "error", err)
			if err := pv.ReleaseBatch(keys); err != nil {
				log.Errorw("release batch failed", "error", err)
			}
			continue
		}
		if err := pv.MarkBlockSubmitted(keys); err != nil {
			log.Errorw("mark block submitted failed", "error", err)
		}
		height++
	}
}
