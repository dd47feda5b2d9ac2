// Package orchestrator repeats the activity actions in loops, or alternates
// them at random from what the wallet can currently afford.
package orchestrator

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/ligun0805/wallet-activity/internal/activity"
	"github.com/ligun0805/wallet-activity/internal/chain"
	"github.com/ligun0805/wallet-activity/internal/config"
	"github.com/ligun0805/wallet-activity/internal/fault"
	"github.com/ligun0805/wallet-activity/internal/retry"
)

type Mode string

const (
	ModeSend     Mode = "send"
	ModeSwaps    Mode = "ping"
	ModeCombined Mode = "combined"
)

type actionFunc func(ctx context.Context) (bool, error)

type Orchestrator struct {
	env          activity.Env
	retry        *retry.Controller
	minBalance   *big.Int
	attemptPause config.IntRange
	log          *zap.Logger
	sleep        retry.Sleeper

	send actionFunc
	swap actionFunc
}

func New(env activity.Env, st *config.Settings, rc *retry.Controller) *Orchestrator {
	log := env.Log
	if log == nil {
		log = zap.NewNop()
	}
	sleep := env.Sleep
	if sleep == nil {
		sleep = retry.Sleep
	}
	sendCfg := activity.NewSendConfig(st)
	swapCfg := activity.NewSwapConfig(st)
	return &Orchestrator{
		env:          env,
		retry:        rc,
		minBalance:   chain.FloatUnits(st.MinimumBalance, env.NativeDecimals),
		attemptPause: st.PauseBetweenAttempts,
		log:          log,
		sleep:        sleep,
		send: func(ctx context.Context) (bool, error) {
			return activity.SendTokens(ctx, env, sendCfg)
		},
		swap: func(ctx context.Context) (bool, error) {
			return activity.Swaps(ctx, env, swapCfg)
		},
	}
}

// Run dispatches one mode. Send accepts loops == 0 as unlimited; the other
// modes need a positive count.
func (o *Orchestrator) Run(ctx context.Context, mode Mode, loops int) error {
	switch mode {
	case ModeSend:
		return o.RunSend(ctx, loops)
	case ModeSwaps:
		return o.RunSwaps(ctx, loops)
	case ModeCombined:
		return o.RunCombined(ctx, loops)
	}
	return fault.Errorf(fault.Configuration, "unknown mode %q", mode)
}

// RunSend repeats the transfer action. It halts once the native balance drops
// below the configured minimum.
func (o *Orchestrator) RunSend(ctx context.Context, loops int) error {
	if loops < 0 {
		return fault.Errorf(fault.Configuration, "loop count must be >= 0, got %d", loops)
	}
	for i := 1; loops == 0 || i <= loops; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.log.Info(fmt.Sprintf("Send loop %s", progress(i, loops)))

		bal, err := o.nativeBalance(ctx)
		if err != nil {
			return err
		}
		if bal.Cmp(o.minBalance) < 0 {
			o.log.Error("Insufficient balance, stopping send loop",
				zap.String("balance", chain.FormatUnits(bal, o.env.NativeDecimals)),
				zap.String("minimum", chain.FormatUnits(o.minBalance, o.env.NativeDecimals)))
			return nil
		}

		if err := o.runAction(ctx, "send", o.send); err != nil {
			return err
		}
		if loops == 0 || i < loops {
			if err := o.pauseBetweenLoops(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunSwaps repeats the swap action loops times.
func (o *Orchestrator) RunSwaps(ctx context.Context, loops int) error {
	if loops < 1 {
		return fault.Errorf(fault.Configuration, "loop count must be >= 1, got %d", loops)
	}
	for i := 1; i <= loops; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.log.Info(fmt.Sprintf("Swap loop %s", progress(i, loops)))
		if err := o.runAction(ctx, "swap", o.swap); err != nil {
			return err
		}
		if i < loops {
			if err := o.pauseBetweenLoops(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

type namedAction struct {
	name string
	fn   actionFunc
}

// RunCombined picks a random affordable action each iteration and ends the
// run as soon as nothing is affordable.
func (o *Orchestrator) RunCombined(ctx context.Context, iterations int) error {
	if iterations < 1 {
		return fault.Errorf(fault.Configuration, "iteration count must be >= 1, got %d", iterations)
	}
	for i := 1; i <= iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		actions, err := o.possibleActions(ctx)
		if err != nil {
			return err
		}
		if len(actions) == 0 {
			o.log.Error("No actions possible: insufficient native balance and no tokens to swap, stopping")
			return nil
		}
		pick := actions[o.env.Random.Index(len(actions))]
		o.log.Info(fmt.Sprintf("Iteration %s: %s", progress(i, iterations), pick.name))

		if err := o.runAction(ctx, pick.name, pick.fn); err != nil {
			return err
		}
		if i < iterations {
			if err := o.pauseBetweenLoops(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *Orchestrator) possibleActions(ctx context.Context) ([]namedAction, error) {
	var actions []namedAction

	bal, err := o.nativeBalance(ctx)
	if err != nil {
		return nil, err
	}
	if bal.Cmp(o.minBalance) >= 0 {
		actions = append(actions, namedAction{name: "send", fn: o.send})
	}

	owner := o.env.Wallet.Address()
	balA, err := retry.Do(ctx, o.retry, "balance "+o.env.TokenA.Symbol(), func(ctx context.Context) (*big.Int, error) {
		return o.env.TokenA.BalanceOf(ctx, owner)
	}, new(big.Int))
	if err := fatal(ctx, err); err != nil {
		return nil, err
	}
	balB, err := retry.Do(ctx, o.retry, "balance "+o.env.TokenB.Symbol(), func(ctx context.Context) (*big.Int, error) {
		return o.env.TokenB.BalanceOf(ctx, owner)
	}, new(big.Int))
	if err := fatal(ctx, err); err != nil {
		return nil, err
	}
	if balA.Sign() > 0 || balB.Sign() > 0 {
		actions = append(actions, namedAction{name: "swap", fn: o.swap})
	}
	return actions, nil
}

// runAction wraps fn in the retry controller. Exhausted retries count as a
// completed step; only cancellation and configuration errors end the run.
func (o *Orchestrator) runAction(ctx context.Context, name string, fn actionFunc) error {
	ok, err := retry.Do(ctx, o.retry, name, fn, false)
	o.env.Metrics.ActionRun(name, ok)
	if err := fatal(ctx, err); err != nil {
		return err
	}
	o.log.Info(fmt.Sprintf("Action %s finished", name), zap.Bool("ok", ok))
	return nil
}

func (o *Orchestrator) nativeBalance(ctx context.Context) (*big.Int, error) {
	bal, err := retry.Do(ctx, o.retry, "balance", o.env.Wallet.Balance, new(big.Int))
	if err := fatal(ctx, err); err != nil {
		return nil, err
	}
	return bal, nil
}

func (o *Orchestrator) pauseBetweenLoops(ctx context.Context) error {
	d := o.env.Random.WholeSeconds(o.attemptPause.Min, o.attemptPause.Max)
	o.log.Info("Pausing before next loop", zap.Duration("pause", d))
	return o.sleep(ctx, d)
}

// fatal filters err down to what must stop the run.
func fatal(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if fault.Is(err, fault.Configuration) {
		return err
	}
	return nil
}

func progress(i, total int) string {
	if total == 0 {
		return fmt.Sprintf("%d", i)
	}
	return fmt.Sprintf("%d/%d", i, total)
}
