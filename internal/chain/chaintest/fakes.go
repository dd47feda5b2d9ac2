// Package chaintest provides in-memory fakes of the chain interfaces.
package chaintest

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ligun0805/wallet-activity/internal/chain"
)

var nonce atomic.Uint64

func newTx(to common.Address, value *big.Int) *types.Transaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce.Add(1),
		To:       &to,
		Value:    new(big.Int).Set(value),
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
}

func clone(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

type Transfer struct {
	To    common.Address
	Value *big.Int
	Gas   uint64
}

// Wallet debits its balance on every successful SendTransfer.
type Wallet struct {
	mu sync.Mutex

	Addr common.Address
	Bal  *big.Int

	BalanceErr  error
	EstimateErr error
	SendErr     error
	// WaitErr, when set, decides the confirmation outcome per tx.
	WaitErr func(tx *types.Transaction) error

	Sent         []Transfer
	Waited       int
	BalanceCalls int
}

var _ chain.Wallet = (*Wallet)(nil)

func (w *Wallet) Address() common.Address { return w.Addr }

func (w *Wallet) Balance(context.Context) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.BalanceCalls++
	if w.BalanceErr != nil {
		return nil, w.BalanceErr
	}
	return clone(w.Bal), nil
}

func (w *Wallet) EstimateTransfer(context.Context, common.Address, *big.Int) (uint64, error) {
	if w.EstimateErr != nil {
		return 0, w.EstimateErr
	}
	return 21000, nil
}

func (w *Wallet) SendTransfer(_ context.Context, to common.Address, value *big.Int, gas uint64) (*types.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.SendErr != nil {
		return nil, w.SendErr
	}
	w.Sent = append(w.Sent, Transfer{To: to, Value: clone(value), Gas: gas})
	w.Bal = new(big.Int).Sub(clone(w.Bal), value)
	return newTx(to, value), nil
}

func (w *Wallet) Wait(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	w.mu.Lock()
	w.Waited++
	fn := w.WaitErr
	w.mu.Unlock()
	if fn != nil {
		if err := fn(tx); err != nil {
			return nil, err
		}
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash(), BlockNumber: big.NewInt(1)}, nil
}

// Token tracks one owner's balance and the router allowance.
type Token struct {
	mu sync.Mutex

	Addr common.Address
	Sym  string
	Dec  int
	Bal  *big.Int

	Allow      *big.Int
	BalanceErr error
	ApproveErr error

	Approvals []*big.Int
}

var _ chain.Token = (*Token)(nil)

func (t *Token) Address() common.Address { return t.Addr }
func (t *Token) Symbol() string          { return t.Sym }
func (t *Token) Decimals() int           { return t.Dec }

func (t *Token) BalanceOf(context.Context, common.Address) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.BalanceErr != nil {
		return nil, t.BalanceErr
	}
	return clone(t.Bal), nil
}

func (t *Token) Allowance(context.Context, common.Address, common.Address) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clone(t.Allow), nil
}

func (t *Token) Approve(_ context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ApproveErr != nil {
		return nil, t.ApproveErr
	}
	t.Allow = clone(amount)
	t.Approvals = append(t.Approvals, clone(amount))
	return newTx(spender, new(big.Int)), nil
}

func (t *Token) spend(amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Bal = new(big.Int).Sub(clone(t.Bal), amount)
	t.Allow = new(big.Int).Sub(clone(t.Allow), amount)
}

// Router debits the input token. It credits no output, so balances only shrink.
type Router struct {
	mu sync.Mutex

	Addr   common.Address
	Tokens map[common.Address]*Token
	// Fail, when set, is consulted with the zero-based call index.
	Fail func(call int) error

	Calls []chain.ExactInputSingleParams
}

var _ chain.Router = (*Router)(nil)

func NewRouter(addr common.Address, tokens ...*Token) *Router {
	r := &Router{Addr: addr, Tokens: map[common.Address]*Token{}}
	for _, t := range tokens {
		r.Tokens[t.Addr] = t
	}
	return r
}

func (r *Router) Address() common.Address { return r.Addr }

func (r *Router) ExactInputSingle(_ context.Context, p chain.ExactInputSingleParams) (*types.Transaction, error) {
	r.mu.Lock()
	call := len(r.Calls)
	r.Calls = append(r.Calls, p)
	fail := r.Fail
	r.mu.Unlock()
	if fail != nil {
		if err := fail(call); err != nil {
			return nil, err
		}
	}
	if t, ok := r.Tokens[p.TokenIn]; ok {
		t.spend(p.AmountIn)
	}
	return newTx(r.Addr, new(big.Int)), nil
}
