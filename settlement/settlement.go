// Package settlement re-expresses the on-chain settlement contract
// described in spec §4.3 as an embeddable Go state machine: the same
// pending-mint/pending-burn ledgers, recent-root ring, multi-version
// validator set, and signed-proposal/aggregate-proof verification gate,
// minus the EVM execution model. A validator or prover node links this
// package directly to simulate and sanity-check a proposal before
// submitting the equivalent transaction to the real contract.
//
// One method per entry point, errors wrapped with fmt.Errorf("...: %w", err);
// "the chain" here is this struct's own invariants rather than a remote RPC.
package settlement

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/log"
	"github.com/shielded-rollup/settlement/storage"
	"github.com/shielded-rollup/settlement/validator"
)

// Settlement holds one instance of the settlement protocol's state.
type Settlement struct {
	cfg   Config
	store *storage.Storage

	initialized       bool
	blockHash         [32]byte
	blockHeight       uint64
	validatorSetIndex int
}

// New wires a Settlement to its backing storage, restoring whatever
// state was previously persisted. The returned value is not yet
// initialized (spec §4.3(1)) until Initialize is called, unless storage
// already holds a prior Initialize's state.
func New(cfg Config, store *storage.Storage) (*Settlement, error) {
	s := &Settlement{cfg: cfg, store: store}
	meta, err := store.LoadSettlementMeta()
	if err != nil {
		return nil, fmt.Errorf("settlement: load meta: %w", err)
	}
	s.initialized = meta.Initialized
	s.blockHash = meta.BlockHash
	s.blockHeight = meta.BlockHeight
	s.validatorSetIndex = meta.ValidatorSetIndex
	return s, nil
}

func (s *Settlement) saveMeta() error {
	return s.store.SaveSettlementMeta(storage.SettlementMeta{
		Initialized:       s.initialized,
		Owner:             s.cfg.Owner,
		Token:             s.cfg.Token,
		BlockHash:         s.blockHash,
		BlockHeight:       s.blockHeight,
		ValidatorSetIndex: s.validatorSetIndex,
	})
}

// Initialize seeds the genesis validator set and root, per spec
// §4.3(1). One-shot; a second call fails.
func (s *Settlement) Initialize(initialValidators []common.Address, genesisRoot field.Element) error {
	if s.initialized {
		return errAlreadyInitialized
	}
	if err := s.store.AppendValidatorSnapshot(storage.ValidatorSnapshot{
		Set:       initialValidators,
		ValidFrom: 0,
	}); err != nil {
		return fmt.Errorf("settlement: seed validator set: %w", err)
	}
	if err := s.store.PushRoot(genesisRoot); err != nil {
		return fmt.Errorf("settlement: seed genesis root: %w", err)
	}
	s.initialized = true
	s.validatorSetIndex = 0
	if err := s.saveMeta(); err != nil {
		return err
	}
	log.Infow("settlement initialized", "genesisRoot", genesisRoot.String(), "validators", len(initialValidators))
	return nil
}

func (s *Settlement) requireInitialized() error {
	if !s.initialized {
		return errNotInitialized
	}
	return nil
}

// Mint verifies a mint proof and records the pending mint, per spec
// §4.3(2). payer stands in for the transaction's msg.sender, which the
// on-chain entry point reads implicitly; this Go API makes it explicit.
func (s *Settlement) Mint(ctx context.Context, payer common.Address, proof []byte, commitment, value, source field.Element) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	if _, exists, err := s.store.GetPendingMint(commitment); err != nil {
		return fmt.Errorf("settlement: check pending mint: %w", err)
	} else if exists {
		return ErrMintExists
	}

	if err := s.cfg.Verifier.Mint.Verify(ctx, []field.Element{commitment, value, source}, proof); err != nil {
		return fmt.Errorf("%w: mint proof: %v", ErrVerificationFailed, err)
	}

	amount := value.BigInt()
	if err := s.cfg.Transfer.TransferFrom(payer, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := s.store.SetPendingMint(commitment, amount); err != nil {
		return fmt.Errorf("settlement: record pending mint: %w", err)
	}
	log.Debugw("mint recorded", "commitment", commitment.String(), "value", amount.String())
	return nil
}

// MintWithAuthorization is Mint, but the token transfer runs through the
// token's EIP-3009 receiveWithAuthorization path (an external
// collaborator, per spec §1) and a second signature, over
// MintWithAuthorization(bytes32 commitment, bytes32 value, bytes32
// source, address from, uint256 validAfter, uint256 validBefore, bytes32
// nonce), authorizes the mint parameters under this contract's own
// EIP-712 domain (spec §4.3(3)).
func (s *Settlement) MintWithAuthorization(
	ctx context.Context,
	proof []byte,
	commitment, value, source field.Element,
	from common.Address,
	validAfter, validBefore uint64,
	nonce field.Element,
	signerSig []byte,
	token3009Sig []byte,
) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	if _, exists, err := s.store.GetPendingMint(commitment); err != nil {
		return fmt.Errorf("settlement: check pending mint: %w", err)
	} else if exists {
		return ErrMintExists
	}

	digest := mintAuthorizationDigest(s.cfg.ChainID, s.cfg.SelfAddress, commitment, value, source, from, validAfter, validBefore, nonce)
	if len(signerSig) != 65 {
		return fmt.Errorf("%w: signer signature must be 65 bytes", ErrInvalidSigner)
	}
	var r, sVal [32]byte
	copy(r[:], signerSig[:32])
	copy(sVal[:], signerSig[32:64])
	signer, err := validator.RecoverSigner(digest, r, sVal, signerSig[64])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSigner, err)
	}
	if signer != from {
		return ErrInvalidSigner
	}

	if err := s.cfg.Verifier.Mint.Verify(ctx, []field.Element{commitment, value, source}, proof); err != nil {
		return fmt.Errorf("%w: mint proof: %v", ErrVerificationFailed, err)
	}

	amount := value.BigInt()
	if err := s.cfg.Transfer.ReceiveWithAuthorization(from, amount, validAfter, validBefore, nonce, token3009Sig); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := s.store.SetPendingMint(commitment, amount); err != nil {
		return fmt.Errorf("settlement: record pending mint: %w", err)
	}
	return nil
}

// Burn verifies a burn proof and records the pending burn, per spec
// §4.3(4). Overwriting an existing entry for the same nullifier is
// intentionally permitted, not guarded against (spec §9's flagged
// open question).
func (s *Settlement) Burn(ctx context.Context, to common.Address, proof []byte, nullifier, value, source, sig field.Element) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	toElem := field.AddressToElement([20]byte(to))
	if err := s.cfg.Verifier.Burn.Verify(ctx, []field.Element{toElem, nullifier, value, source, sig}, proof); err != nil {
		return fmt.Errorf("%w: burn proof: %v", ErrVerificationFailed, err)
	}
	if err := s.store.SetPendingBurn(nullifier, to, value.BigInt()); err != nil {
		return fmt.Errorf("settlement: record pending burn: %w", err)
	}
	log.Debugw("burn recorded", "nullifier", nullifier.String(), "to", to.Hex(), "value", value.BigInt().String())
	return nil
}

// GetMint is the read path for the pending mint ledger (spec §9's
// "implementers should expose a read path").
func (s *Settlement) GetMint(commitment field.Element) (*big.Int, bool, error) {
	return s.store.GetPendingMint(commitment)
}

// GetBurn is the read path for the pending burn ledger.
func (s *Settlement) GetBurn(nullifier field.Element) (common.Address, *big.Int, bool, error) {
	return s.store.GetPendingBurn(nullifier)
}

// SetValidators appends a new validator-set snapshot, per spec §4.3(6).
// Owner-only in the on-chain contract; this package leaves caller
// authorization to the embedder.
func (s *Settlement) SetValidators(validFrom uint64, validators []common.Address) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	snaps, err := s.store.ValidatorSnapshots()
	if err != nil {
		return fmt.Errorf("settlement: load validator snapshots: %w", err)
	}
	if len(snaps) > 0 && validFrom <= snaps[len(snaps)-1].ValidFrom {
		return fmt.Errorf("settlement: validFrom %d must strictly exceed the last snapshot's %d", validFrom, snaps[len(snaps)-1].ValidFrom)
	}
	seen := make(map[common.Address]bool, len(validators))
	for _, v := range validators {
		if seen[v] {
			return fmt.Errorf("settlement: duplicate validator %s within snapshot", v.Hex())
		}
		seen[v] = true
	}
	return s.store.AppendValidatorSnapshot(storage.ValidatorSnapshot{Set: validators, ValidFrom: validFrom})
}

// AddProver registers addr as authorized to call VerifyBlock, per spec
// §4.3(7).
func (s *Settlement) AddProver(addr common.Address) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	return s.store.AddProver(addr)
}

// SetRoot pushes newRoot into the recent-root ring unconditionally, a
// manual-recovery facility per spec §4.3(7) ("use is outside the normal
// protocol").
func (s *Settlement) SetRoot(newRoot field.Element) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	return s.store.PushRoot(newRoot)
}
