// Package token implements settlement.TokenTransferer against a real
// deployed ERC20/EIP-3009 stablecoin contract, the "external collaborator"
// spec §1 deliberately leaves out of scope for the settlement package
// itself. It is this repo's one component that actually sends
// state-changing transactions, as opposed to evmverifier's read-only
// staticcalls.
//
// Uses an authenticated bind.TransactOpts plus bind.BoundContract for the
// signer/transaction-options plumbing, against an inline ABI literal
// rather than an abigen-generated binding, since there's no Solidity
// source checked into this repo to generate one from.
package token

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shielded-rollup/settlement/field"
)

// erc20ABIJSON covers the subset of ERC20 plus EIP-3009 this package
// drives: transferFrom, transfer, and receiveWithAuthorization.
const erc20ABIJSON = `[
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"receiveWithAuthorization","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"},{"name":"validAfter","type":"uint256"},{"name":"validBefore","type":"uint256"},{"name":"nonce","type":"bytes32"},{"name":"v","type":"uint8"},{"name":"r","type":"bytes32"},{"name":"s","type":"bytes32"}],"outputs":[]}
]`

var erc20ABI abi.ABI

func init() {
	var err error
	erc20ABI, err = abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic(fmt.Sprintf("token: parse embedded ABI: %v", err))
	}
}

// ERC3009Token drives a live ERC20/EIP-3009 token contract with a single
// signing key, the rollup's own custody account.
type ERC3009Token struct {
	contract *bind.BoundContract
	client   *ethclient.Client
	signer   *bind.TransactOpts
	self     common.Address
}

// New wires an ERC3009Token against token, signing outgoing transactions
// with privKey and targeting chainID.
func New(client *ethclient.Client, tokenAddr common.Address, privKeyHex string, chainID *big.Int) (*ERC3009Token, error) {
	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(privKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("token: parse private key: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(privKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("token: build transactor: %w", err)
	}
	return &ERC3009Token{
		contract: bind.NewBoundContract(tokenAddr, erc20ABI, client, client, client),
		client:   client,
		signer:   opts,
		self:     crypto.PubkeyToAddress(privKey.PublicKey),
	}, nil
}

// TransferFrom implements settlement.TokenTransferer.
func (t *ERC3009Token) TransferFrom(payer common.Address, amount *big.Int) error {
	tx, err := t.contract.Transact(t.signer, "transferFrom", payer, t.self, amount)
	if err != nil {
		return fmt.Errorf("token: transferFrom: %w", err)
	}
	return t.waitMined(tx)
}

// Transfer implements settlement.TokenTransferer. A zero recipient is a
// skipped transfer, per spec §3.
func (t *ERC3009Token) Transfer(recipient common.Address, amount *big.Int) error {
	if recipient == (common.Address{}) {
		return nil
	}
	tx, err := t.contract.Transact(t.signer, "transfer", recipient, amount)
	if err != nil {
		return fmt.Errorf("token: transfer: %w", err)
	}
	return t.waitMined(tx)
}

// ReceiveWithAuthorization implements settlement.TokenTransferer,
// forwarding the EIP-3009 signature opaquely; the token contract is
// responsible for validating it.
func (t *ERC3009Token) ReceiveWithAuthorization(payer common.Address, amount *big.Int, validAfter, validBefore uint64, nonce field.Element, sig []byte) error {
	if len(sig) != 65 {
		return fmt.Errorf("token: authorization signature must be 65 bytes, got %d", len(sig))
	}
	var r, s [32]byte
	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])
	v := sig[64]

	tx, err := t.contract.Transact(t.signer, "receiveWithAuthorization",
		payer, t.self, amount,
		new(big.Int).SetUint64(validAfter), new(big.Int).SetUint64(validBefore),
		nonce.Bytes32(), v, r, s,
	)
	if err != nil {
		return fmt.Errorf("token: receiveWithAuthorization: %w", err)
	}
	return t.waitMined(tx)
}

func (t *ERC3009Token) waitMined(tx *types.Transaction) error {
	receipt, err := bind.WaitMined(context.Background(), t.client, tx)
	if err != nil {
		return fmt.Errorf("token: wait mined: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("token: transaction %s reverted", tx.Hash())
	}
	return nil
}
