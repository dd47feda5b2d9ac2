package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ligun0805/wallet-activity/internal/activity"
	"github.com/ligun0805/wallet-activity/internal/chain"
	"github.com/ligun0805/wallet-activity/internal/config"
	"github.com/ligun0805/wallet-activity/internal/logging"
	"github.com/ligun0805/wallet-activity/internal/metrics"
	"github.com/ligun0805/wallet-activity/internal/orchestrator"
	"github.com/ligun0805/wallet-activity/internal/random"
	"github.com/ligun0805/wallet-activity/internal/retry"
)

// app is everything built once at startup and threaded through a run.
type app struct {
	st     *config.Settings
	log    *zap.Logger
	client *chain.Client
	env    activity.Env
	orch   *orchestrator.Orchestrator
}

func (a *app) close() {
	a.client.Close()
	_ = a.log.Sync()
}

func bootstrap(ctx context.Context, flags *rootFlags) (*app, error) {
	st, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		st.LogLevel = flags.logLevel
	}
	if flags.metricsAddr != "" {
		st.MetricsAddr = flags.metricsAddr
	}
	if err := st.RequirePrivateKey(); err != nil {
		return nil, err
	}

	log, err := logging.New(st.LogLevel)
	if err != nil {
		return nil, err
	}

	client, err := chain.Dial(ctx, chain.Options{
		RPCURL:            st.RPCURL,
		ChainID:           st.ChainID,
		RequestsPerSecond: st.RPCRequestsPerSecond,
		ConfirmTimeout:    st.ConfirmTimeout,
		BasefeeMul:        st.BasefeeMul,
	})
	if err != nil {
		return nil, err
	}
	acct, err := chain.LoadAccount(client, st.PrivateKeyHex)
	if err != nil {
		client.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if st.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, st.MetricsAddr, reg, log); err != nil {
				log.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	rc := retry.New(retry.Policy{
		Attempts:     st.Attempts,
		InitialDelay: st.RetryInitialDelay,
		Backoff:      st.RetryBackoff,
	}, log, retry.WithObserver(func(op string, _ int, _ error) {
		m.RetryAttempt(op)
	}))

	env := activity.Env{
		Wallet:         acct,
		TokenA:         chain.NewERC20(acct, st.Swaps.TokenA.Address, st.Swaps.TokenA.Symbol, st.Swaps.TokenA.Decimals),
		TokenB:         chain.NewERC20(acct, st.Swaps.TokenB.Address, st.Swaps.TokenB.Symbol, st.Swaps.TokenB.Decimals),
		Router:         chain.NewSwapRouter(acct, st.Swaps.Router),
		Random:         random.New(),
		Sleep:          retry.Sleep,
		Log:            log,
		Metrics:        m,
		NewAddress:     chain.NewThrowawayAddress,
		Explorer:       st.ExplorerURL,
		NativeSymbol:   st.NativeSymbol,
		NativeDecimals: st.NativeDecimals,
	}

	return &app{
		st:     st,
		log:    log,
		client: client,
		env:    env,
		orch:   orchestrator.New(env, st, rc),
	}, nil
}
