package activity

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/wallet-activity/internal/config"
	"github.com/ligun0805/wallet-activity/internal/fault"
	"github.com/ligun0805/wallet-activity/internal/random"
)

func TestSwapsBothZeroIsNoop(t *testing.T) {
	f := newFixture(nil)

	ok, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 1, Max: 3}))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.router.Calls)
	assert.Empty(t, f.tokenA.Approvals)
}

func TestSwapsSkipWhenBalanceRunsShort(t *testing.T) {
	f := newFixture(nil)
	f.tokenA.Bal = tokens(250)

	ok, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 3, Max: 3}))
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, f.router.Calls, 2)
	for _, c := range f.router.Calls {
		assert.Equal(t, tokenAAddr, c.TokenIn)
		assert.Equal(t, tokenBAddr, c.TokenOut)
		assert.Equal(t, tokens(100), c.AmountIn)
		assert.Zero(t, c.AmountOutMinimum.Sign())
		assert.EqualValues(t, 500, c.Fee.Int64())
		assert.Equal(t, f.wallet.Addr, c.Recipient)
	}
	assert.Equal(t, tokens(50).String(), f.tokenA.Bal.String())
	// exact-amount approval before each swap, since each swap spends it
	require.Len(t, f.tokenA.Approvals, 2)
	for _, a := range f.tokenA.Approvals {
		assert.Zero(t, a.Cmp(tokens(100)))
	}
	// pauses after swap 1 and swap 2; the skipped third is last
	assert.Len(t, f.sleep.delays, 2)
}

func TestSwapsForceFundedSide(t *testing.T) {
	f := newFixture(nil)
	f.tokenB.Bal = tokens(1000)

	ok, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 3, Max: 3}))
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, f.router.Calls, 3)
	for _, c := range f.router.Calls {
		assert.Equal(t, tokenBAddr, c.TokenIn)
	}
	assert.Empty(t, f.tokenA.Approvals)
}

func TestSwapsStopWhenBothReachZero(t *testing.T) {
	f := newFixture(nil)
	f.tokenA.Bal = tokens(100)

	ok, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 3, Max: 3}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, f.router.Calls, 1)
}

func TestSwapsCoinFlipPicksInput(t *testing.T) {
	for _, tt := range []struct {
		name string
		flip float64
		want string
	}{
		{name: "heads", flip: 0.9, want: "PING"},
		{name: "tails", flip: 0.2, want: "PONG"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(random.NewWithSource(random.NewScripted(nil, []float64{tt.flip})))
			f.tokenA.Bal = tokens(500)
			f.tokenB.Bal = tokens(500)

			ok, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 1, Max: 1}))
			require.NoError(t, err)
			assert.True(t, ok)
			require.Len(t, f.router.Calls, 1)
			in := f.router.Tokens[f.router.Calls[0].TokenIn]
			assert.Equal(t, tt.want, in.Sym)
		})
	}
}

func TestSwapsNoApprovalWhenAllowanceSuffices(t *testing.T) {
	f := newFixture(nil)
	f.tokenA.Bal = tokens(300)
	f.tokenA.Allow = tokens(1_000_000)

	_, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 2, Max: 2}))
	require.NoError(t, err)
	assert.Empty(t, f.tokenA.Approvals)
	assert.Len(t, f.router.Calls, 2)
}

func TestSwapsFailureIsIsolated(t *testing.T) {
	f := newFixture(nil)
	f.tokenA.Bal = tokens(500)
	f.router.Fail = func(call int) error {
		if call == 0 {
			return errRPC
		}
		return nil
	}

	ok, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 2, Max: 2}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, f.router.Calls, 2)
	assert.Equal(t, tokens(400).String(), f.tokenA.Bal.String())
}

func TestSwapsAllConfirmationsFail(t *testing.T) {
	f := newFixture(nil)
	f.tokenA.Bal = tokens(500)
	f.tokenA.Allow = tokens(500)
	f.wallet.WaitErr = func(*types.Transaction) error { return errRPC }

	ok, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 2, Max: 2}))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, f.router.Calls, 2)
	assert.Empty(t, f.sleep.delays)
}

func TestSwapsApprovalFailurePropagates(t *testing.T) {
	f := newFixture(nil)
	f.tokenA.Bal = tokens(500)
	f.tokenA.ApproveErr = fault.Errorf(fault.Transient, "approve reverted")

	ok, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 2, Max: 2}))
	require.Error(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.router.Calls)
	assert.Len(t, f.sleep.delays, 1)
}

func TestSwapsBalanceErrorPropagates(t *testing.T) {
	f := newFixture(nil)
	f.tokenB.BalanceErr = errRPC

	_, err := Swaps(context.Background(), f.env, swapConfig(config.IntRange{Min: 1, Max: 1}))
	require.ErrorIs(t, err, errRPC)
}
