package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/ligun0805/wallet-activity/internal/fault"
)

// Account is the single signing identity of a run.
type Account struct {
	c    *Client
	key  *ecdsa.PrivateKey
	addr common.Address
}

// LoadAccount parses a hex key (with or without 0x).
func LoadAccount(c *Client, pkHex string) (*Account, error) {
	key, err := hexToECDSAPriv(pkHex)
	if err != nil {
		return nil, fault.New(fault.Configuration, "parse private key", err)
	}
	return &Account{c: c, key: key, addr: gethcrypto.PubkeyToAddress(key.PublicKey)}, nil
}

func hexToECDSAPriv(s string) (*ecdsa.PrivateKey, error) {
	h := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if len(h) == 0 {
		return nil, errors.New("empty private key")
	}
	return gethcrypto.HexToECDSA(h)
}

func (a *Account) Address() common.Address { return a.addr }

func (a *Account) Balance(ctx context.Context) (*big.Int, error) {
	bal, err := a.c.be.BalanceAt(ctx, a.addr, nil)
	if err != nil {
		return nil, classify("balance", err)
	}
	return bal, nil
}

func (a *Account) EstimateTransfer(ctx context.Context, to common.Address, value *big.Int) (uint64, error) {
	gas, err := a.c.be.EstimateGas(ctx, ethereum.CallMsg{From: a.addr, To: &to, Value: value})
	if err != nil {
		return 0, classify("estimate gas", err)
	}
	return gas, nil
}

func (a *Account) SendTransfer(ctx context.Context, to common.Address, value *big.Int, gas uint64) (*types.Transaction, error) {
	nonce, err := a.c.be.PendingNonceAt(ctx, a.addr)
	if err != nil {
		return nil, classify("nonce", err)
	}
	f, err := a.c.currentFees(ctx)
	if err != nil {
		return nil, err
	}
	var tx *types.Transaction
	if f.legacy {
		tx = types.NewTx(&types.LegacyTx{Nonce: nonce, GasPrice: f.gasPrice, Gas: gas, To: &to, Value: new(big.Int).Set(value)})
	} else {
		tx = buildDynamicTx(a.c.chainID, nonce, &to, value, gas, f.tip, f.feeCap, nil)
	}
	signed, err := signTx(tx, a.c.chainID, a.key)
	if err != nil {
		return nil, fault.New(fault.Configuration, "sign", err)
	}
	if err := a.c.be.SendTransaction(ctx, signed); err != nil {
		return nil, classify("send", err)
	}
	return signed, nil
}

func (a *Account) Wait(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return a.c.waitMined(ctx, tx)
}

// transactor builds bind options for a contract write priced like a transfer.
func (a *Account) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(a.key, a.c.chainID)
	if err != nil {
		return nil, fault.New(fault.Configuration, "transactor", err)
	}
	f, err := a.c.currentFees(ctx)
	if err != nil {
		return nil, err
	}
	if f.legacy {
		opts.GasPrice = f.gasPrice
	} else {
		opts.GasTipCap = f.tip
		opts.GasFeeCap = f.feeCap
	}
	opts.Context = ctx
	return opts, nil
}

func buildDynamicTx(chain *big.Int, nonce uint64, to *common.Address, value *big.Int, gasLimit uint64, tip, feeCap *big.Int, data []byte) *types.Transaction {
	df := &types.DynamicFeeTx{
		ChainID:   chain,
		Nonce:     nonce,
		Gas:       gasLimit,
		GasTipCap: new(big.Int).Set(tip),
		GasFeeCap: new(big.Int).Set(feeCap),
		To:        to,
		Value:     new(big.Int).Set(value),
		Data:      data,
	}
	return types.NewTx(df)
}

func signTx(tx *types.Transaction, chain *big.Int, prv *ecdsa.PrivateKey) (*types.Transaction, error) {
	signer := types.LatestSignerForChainID(chain)
	return types.SignTx(tx, signer, prv)
}

// NewThrowawayAddress returns a fresh address whose key is discarded.
func NewThrowawayAddress() (common.Address, error) {
	key, err := gethcrypto.GenerateKey()
	if err != nil {
		return common.Address{}, err
	}
	return gethcrypto.PubkeyToAddress(key.PublicKey), nil
}
