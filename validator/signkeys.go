// Package validator implements the signing side of spec §4.3's
// signed-proposal protocol: generating/importing an ECDSA key, producing
// the "Ethereum-flavoured but not EIP-191/712" signature over a block's
// accept digest, and recovering a signer address from a signature.
//
// Built on go-ethereum's crypto package for the underlying secp256k1
// key generation, digest signing, and address recovery.
package validator

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignKeys holds one ECDSA keypair used to sign block proposals.
type SignKeys struct {
	private *ecdsa.PrivateKey
	public  *ecdsa.PublicKey
}

// NewSignKeys returns an empty SignKeys; call Generate or AddHexKey before
// using it.
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate creates a fresh random keypair.
func (s *SignKeys) Generate() error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("validator: generate key: %w", err)
	}
	s.private = key
	s.public = &key.PublicKey
	return nil
}

// AddHexKey imports a hex-encoded (optionally 0x-prefixed) secp256k1
// private key.
func (s *SignKeys) AddHexKey(hexKey string) error {
	key, err := crypto.HexToECDSA(trim0x(hexKey))
	if err != nil {
		return fmt.Errorf("validator: parse private key: %w", err)
	}
	s.private = key
	s.public = &key.PublicKey
	return nil
}

// HexString returns the (public, private) keys in hex, without a 0x prefix.
func (s *SignKeys) HexString() (pub, priv string) {
	if s.private == nil {
		return "", ""
	}
	return hex.EncodeToString(crypto.FromECDSAPub(s.public)), hex.EncodeToString(crypto.FromECDSA(s.private))
}

// PublicKey returns the uncompressed public key bytes.
func (s *SignKeys) PublicKey() []byte {
	return crypto.FromECDSAPub(s.public)
}

// Address returns the Ethereum address derived from the public key.
func (s *SignKeys) Address() common.Address {
	return crypto.PubkeyToAddress(*s.public)
}

// AddressString is Address in its canonical hex form.
func (s *SignKeys) AddressString() string {
	return s.Address().String()
}

// SignEthereum signs msg using the standard Ethereum "personal_sign"
// framing (keccak256("\x19Ethereum Signed Message:\n" + len(msg) + msg)).
// This is provided for interoperability with wallet-signed messages; the
// settlement protocol's own proposal signatures use SignDigest instead,
// which signs an already-final 32-byte digest under spec §3's
// non-EIP-191 "Polybase" framing.
func (s *SignKeys) SignEthereum(msg []byte) ([]byte, error) {
	digest := personalMessageHash(msg)
	return crypto.Sign(digest, s.private)
}

// SignDigest signs an already-computed 32-byte digest directly, with no
// further framing. Used for spec §3's D = keccak("Polybase"-framed H2).
func (s *SignKeys) SignDigest(digest [32]byte) (r, sVal [32]byte, v byte, err error) {
	sig, err := crypto.Sign(digest[:], s.private)
	if err != nil {
		return r, sVal, 0, fmt.Errorf("validator: sign digest: %w", err)
	}
	copy(r[:], sig[:32])
	copy(sVal[:], sig[32:64])
	return r, sVal, sig[64], nil
}

func personalMessageHash(msg []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))
	return crypto.Keccak256([]byte(prefix), msg)
}

// AddrFromPublicKey derives the Ethereum address from uncompressed public
// key bytes.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	key, err := crypto.UnmarshalPubkey(pub)
	if err != nil {
		return common.Address{}, fmt.Errorf("validator: unmarshal public key: %w", err)
	}
	return crypto.PubkeyToAddress(*key), nil
}

// AddrFromSignature recovers the signer address of a personal_sign-framed
// signature over msg.
func AddrFromSignature(msg, sig []byte) (common.Address, error) {
	digest := personalMessageHash(msg)
	return recoverAddress(digest, sig)
}

// RecoverSigner recovers the signer address of a signature produced by
// SignDigest, i.e. one with no personal_sign framing.
func RecoverSigner(digest [32]byte, r, sVal [32]byte, v byte) (common.Address, error) {
	sig := make([]byte, 65)
	copy(sig[:32], r[:])
	copy(sig[32:64], sVal[:])
	sig[64] = v
	return recoverAddress(digest[:], sig)
}

func recoverAddress(digest, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("validator: signature must be 65 bytes, got %d", len(sig))
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("validator: recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
