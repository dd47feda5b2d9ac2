package chain

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const erc20ABI = `[
 {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

// SwapRouter02 variant: no deadline in the tuple.
const routerABI = `[
 {"type":"function","name":"exactInputSingle","stateMutability":"payable",
  "inputs":[{"name":"params","type":"tuple","components":[
    {"name":"tokenIn","type":"address"},
    {"name":"tokenOut","type":"address"},
    {"name":"fee","type":"uint24"},
    {"name":"recipient","type":"address"},
    {"name":"amountIn","type":"uint256"},
    {"name":"amountOutMinimum","type":"uint256"},
    {"name":"sqrtPriceLimitX96","type":"uint160"}]}],
  "outputs":[{"name":"amountOut","type":"uint256"}]}
]`

var (
	erc20Parsed  = mustABI(erc20ABI)
	routerParsed = mustABI(routerABI)
)

func mustABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}

// ERC20 is a token bound to the account that signs its approvals.
type ERC20 struct {
	acct     *Account
	addr     common.Address
	symbol   string
	decimals int
	bc       *bind.BoundContract
}

func NewERC20(acct *Account, addr common.Address, symbol string, decimals int) *ERC20 {
	be := acct.c.be
	return &ERC20{
		acct:     acct,
		addr:     addr,
		symbol:   symbol,
		decimals: decimals,
		bc:       bind.NewBoundContract(addr, erc20Parsed, be, be, be),
	}
}

func (t *ERC20) Address() common.Address { return t.addr }
func (t *ERC20) Symbol() string          { return t.symbol }
func (t *ERC20) Decimals() int           { return t.decimals }

func (t *ERC20) callUint(ctx context.Context, method string, args ...any) (*big.Int, error) {
	var out []any
	if err := t.bc.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, classify(t.symbol+"."+method, err)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.callUint(ctx, "balanceOf", owner)
}

func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.callUint(ctx, "allowance", owner, spender)
}

func (t *ERC20) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	opts, err := t.acct.transactor(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := t.bc.Transact(opts, "approve", spender, amount)
	if err != nil {
		return nil, classify(t.symbol+".approve", err)
	}
	return tx, nil
}

type SwapRouter struct {
	acct *Account
	addr common.Address
	bc   *bind.BoundContract
}

func NewSwapRouter(acct *Account, addr common.Address) *SwapRouter {
	be := acct.c.be
	return &SwapRouter{acct: acct, addr: addr, bc: bind.NewBoundContract(addr, routerParsed, be, be, be)}
}

func (r *SwapRouter) Address() common.Address { return r.addr }

func (r *SwapRouter) ExactInputSingle(ctx context.Context, p ExactInputSingleParams) (*types.Transaction, error) {
	opts, err := r.acct.transactor(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := r.bc.Transact(opts, "exactInputSingle", normalize(p))
	if err != nil {
		return nil, classify("exactInputSingle", err)
	}
	return tx, nil
}

func normalize(p ExactInputSingleParams) ExactInputSingleParams {
	zero := func(v *big.Int) *big.Int {
		if v == nil {
			return new(big.Int)
		}
		return v
	}
	p.Fee = zero(p.Fee)
	p.AmountIn = zero(p.AmountIn)
	p.AmountOutMinimum = zero(p.AmountOutMinimum)
	p.SqrtPriceLimitX96 = zero(p.SqrtPriceLimitX96)
	return p
}
