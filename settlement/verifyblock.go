package settlement

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/log"
	"github.com/shielded-rollup/settlement/validator"
)

// VerifyBlock implements spec §4.3(5), steps (a)-(h), verbatim — the
// single entry point that advances the canonical root.
func (s *Settlement) VerifyBlock(ctx context.Context, prover common.Address, req VerifyBlockRequest) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	if err := s.requireProver(prover); err != nil {
		return err
	}

	// (a) advance the validator-set pointer; it never decreases.
	if err := s.advanceValidatorSetIndex(req.Height); err != nil {
		return err
	}
	effective, err := s.effectiveValidators()
	if err != nil {
		return err
	}

	// (b) old root must match the current canonical root.
	current, ok, err := s.store.CurrentRoot()
	if err != nil {
		return fmt.Errorf("settlement: load current root: %w", err)
	}
	if !ok || !current.Equal(req.OldRoot) {
		return ErrOldRootMismatch
	}

	// (c) consume matching pending mints/burns for each of the 6 UTXOs.
	if err := s.consumeMintsAndBurns(req.UtxoHashes); err != nil {
		return err
	}

	// (d) recent-root check on each of the 6 root_ref slots.
	if err := s.checkRecentRootRefs(req.UtxoHashes); err != nil {
		return err
	}

	// (e) signature quorum.
	threshold := len(effective)*2/3 + 1
	if len(req.Signatures) < threshold {
		return ErrQuorumNotMet
	}

	// (f) recover signers, check membership and strict ordering.
	if err := s.verifySignatures(req, effective); err != nil {
		return err
	}

	// (g) aggregate proof gate.
	instances := make([]field.Element, 0, 32)
	instances = append(instances, req.AggrInstances[:]...)
	instances = append(instances, req.OldRoot, req.NewRoot)
	instances = append(instances, req.UtxoHashes[:]...)
	if err := s.cfg.Verifier.Aggregate.Verify(ctx, instances, req.AggrProof); err != nil {
		return fmt.Errorf("%w: aggregate proof: %v", ErrVerificationFailed, err)
	}

	// (h) advance canonical state.
	h1, _, _ := ProposalDigest(req.NewRoot, req.ExtraHash, req.Height)
	if err := s.store.PushRoot(req.NewRoot); err != nil {
		return fmt.Errorf("settlement: push new root: %w", err)
	}
	s.blockHash = h1
	s.blockHeight = req.Height
	if err := s.saveMeta(); err != nil {
		return err
	}
	log.Infow("block accepted", "height", req.Height, "newRoot", req.NewRoot.String(), "signers", len(req.Signatures))
	return nil
}

func (s *Settlement) requireProver(addr common.Address) error {
	provers, err := s.store.ProverSet()
	if err != nil {
		return fmt.Errorf("settlement: load provers: %w", err)
	}
	for _, p := range provers {
		if p == addr {
			return nil
		}
	}
	return ErrNotAProver
}

// advanceValidatorSetIndex implements spec §4.3(5)(a): walk forward
// through V while the next snapshot's validFrom <= height. The index is
// a field on s, so it is monotonic across calls regardless of what
// height is passed in any single call.
func (s *Settlement) advanceValidatorSetIndex(height uint64) error {
	snaps, err := s.store.ValidatorSnapshots()
	if err != nil {
		return fmt.Errorf("settlement: load validator snapshots: %w", err)
	}
	for s.validatorSetIndex+1 < len(snaps) && snaps[s.validatorSetIndex+1].ValidFrom <= height {
		s.validatorSetIndex++
	}
	return nil
}

func (s *Settlement) effectiveValidators() ([]common.Address, error) {
	snaps, err := s.store.ValidatorSnapshots()
	if err != nil {
		return nil, fmt.Errorf("settlement: load validator snapshots: %w", err)
	}
	if s.validatorSetIndex >= len(snaps) {
		return nil, fmt.Errorf("settlement: validator set index %d out of range (%d snapshots)", s.validatorSetIndex, len(snaps))
	}
	return snaps[s.validatorSetIndex].Set, nil
}

// consumeMintsAndBurns implements spec §4.3(5)(c).
func (s *Settlement) consumeMintsAndBurns(utxoHashes [18]field.Element) error {
	for i := 0; i < 18; i += 3 {
		mb := utxoHashes[i+1]
		value := utxoHashes[i+2]
		if value.IsZero() {
			continue
		}
		if amount, ok, err := s.store.GetPendingMint(mb); err != nil {
			return fmt.Errorf("settlement: check pending mint: %w", err)
		} else if ok {
			if amount.Cmp(value.BigInt()) != 0 {
				return ErrInvalidMintBurn
			}
			if err := s.store.DeletePendingMint(mb); err != nil {
				return fmt.Errorf("settlement: drain pending mint: %w", err)
			}
			continue
		}
		if to, amount, ok, err := s.store.GetPendingBurn(mb); err != nil {
			return fmt.Errorf("settlement: check pending burn: %w", err)
		} else if ok {
			if amount.Cmp(value.BigInt()) != 0 {
				return ErrInvalidMintBurn
			}
			if to != (common.Address{}) {
				if err := s.cfg.Transfer.Transfer(to, amount); err != nil {
					return fmt.Errorf("%w: %v", ErrTransferFailed, err)
				}
			}
			if err := s.store.DeletePendingBurn(mb); err != nil {
				return fmt.Errorf("settlement: drain pending burn: %w", err)
			}
			continue
		}
		return ErrInvalidMintBurn
	}
	return nil
}

// checkRecentRootRefs implements spec §4.3(5)(d), including the V4
// zero-root_ref amendment.
func (s *Settlement) checkRecentRootRefs(utxoHashes [18]field.Element) error {
	for i := 0; i < 18; i += 3 {
		rootRef := utxoHashes[i]
		if rootRef.IsZero() && s.cfg.Version.acceptsZeroRootRef() {
			continue
		}
		present, err := s.store.ContainsRoot(rootRef)
		if err != nil {
			return fmt.Errorf("settlement: check recent root: %w", err)
		}
		if !present {
			return ErrInvalidRecentRoots
		}
	}
	return nil
}

// verifySignatures implements spec §4.3(5)(f): recover each signer,
// require membership in effective, and require strictly increasing
// addresses to force uniqueness and canonical order.
func (s *Settlement) verifySignatures(req VerifyBlockRequest, effective []common.Address) error {
	inSet := make(map[common.Address]bool, len(effective))
	for _, v := range effective {
		inSet[v] = true
	}

	_, _, digest := ProposalDigest(req.NewRoot, req.ExtraHash, req.Height)

	var prevSigner common.Address
	for i, sig := range req.Signatures {
		signer, err := validator.RecoverSigner(digest, sig.R, sig.S, sig.V)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSigner, err)
		}
		if !inSet[signer] {
			return ErrInvalidSigner
		}
		if i > 0 && bytes.Compare(signer[:], prevSigner[:]) <= 0 {
			return ErrSignersNotSorted
		}
		prevSigner = signer
	}
	return nil
}
