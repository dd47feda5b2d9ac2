// Package activity holds the two on-chain actions: randomized native
// transfers and ping-pong token swaps. Both are stateless functions; all
// collaborators arrive through Env and all bounds through the config value.
package activity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/ligun0805/wallet-activity/internal/chain"
	"github.com/ligun0805/wallet-activity/internal/config"
	"github.com/ligun0805/wallet-activity/internal/metrics"
	"github.com/ligun0805/wallet-activity/internal/random"
	"github.com/ligun0805/wallet-activity/internal/retry"
)

// Env is built once at startup and shared read-only by every action run.
type Env struct {
	Wallet chain.Wallet
	TokenA chain.Token
	TokenB chain.Token
	Router chain.Router

	Random  *random.Generator
	Sleep   retry.Sleeper
	Log     *zap.Logger
	Metrics *metrics.Metrics

	// NewAddress mints a throwaway recipient. Defaults to chain.NewThrowawayAddress.
	NewAddress func() (common.Address, error)

	Explorer       string
	NativeSymbol   string
	NativeDecimals int
}

func (e Env) log() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (e Env) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep == nil {
		return retry.Sleep(ctx, d)
	}
	return e.Sleep(ctx, d)
}

func (e Env) newAddress() (common.Address, error) {
	if e.NewAddress == nil {
		return chain.NewThrowawayAddress()
	}
	return e.NewAddress()
}

func (e Env) txURL(tx *types.Transaction) string {
	return e.Explorer + tx.Hash().Hex()
}

type SendConfig struct {
	config.SenderSettings
	ActionPause  config.FloatRange
	AttemptPause config.IntRange
}

type SwapConfig struct {
	Txs          config.IntRange
	Amount       config.IntRange
	FeeTier      uint32
	ActionPause  config.FloatRange
	AttemptPause config.IntRange
}

func NewSendConfig(st *config.Settings) SendConfig {
	return SendConfig{
		SenderSettings: st.Sender,
		ActionPause:    st.PauseBetweenActions,
		AttemptPause:   st.PauseBetweenAttempts,
	}
}

func NewSwapConfig(st *config.Settings) SwapConfig {
	return SwapConfig{
		Txs:          st.Swaps.Txs,
		Amount:       st.Swaps.Amount,
		FeeTier:      st.Swaps.FeeTier,
		ActionPause:  st.PauseBetweenActions,
		AttemptPause: st.PauseBetweenAttempts,
	}
}

func (e Env) pauseBetweenActions(ctx context.Context, r config.FloatRange) error {
	d := e.Random.Seconds(r.Min, r.Max)
	e.log().Info("Pausing before next transaction", zap.Duration("pause", d.Round(time.Millisecond)))
	return e.sleep(ctx, d)
}

func (e Env) pauseAfterFailure(ctx context.Context, r config.IntRange) error {
	d := e.Random.WholeSeconds(r.Min, r.Max)
	e.log().Info("Pausing after failure", zap.Duration("pause", d))
	return e.sleep(ctx, d)
}
