// Package chain is the narrow view of the network the bot needs: one signing
// wallet, two ERC-20 tokens and a single-hop swap router.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Wallet is the signing account. Every method talks to the node; nothing is cached.
type Wallet interface {
	Address() common.Address
	Balance(ctx context.Context) (*big.Int, error)
	EstimateTransfer(ctx context.Context, to common.Address, value *big.Int) (uint64, error)
	SendTransfer(ctx context.Context, to common.Address, value *big.Int, gas uint64) (*types.Transaction, error)
	// Wait blocks until tx is mined. A receipt with failed status is an error.
	Wait(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type Token interface {
	Address() common.Address
	Symbol() string
	Decimals() int
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error)
}

// ExactInputSingleParams mirrors the SwapRouter02 tuple. Field names must
// match the ABI component names for packing.
type ExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int // uint24
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int // uint160
}

type Router interface {
	Address() common.Address
	ExactInputSingle(ctx context.Context, p ExactInputSingleParams) (*types.Transaction, error)
}
