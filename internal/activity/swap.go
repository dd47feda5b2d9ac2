package activity

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/ligun0805/wallet-activity/internal/chain"
	"github.com/ligun0805/wallet-activity/internal/fault"
)

const (
	actionSwap    = "swap"
	actionApprove = "approve"
)

// Swaps runs a random number of single-hop swaps between TokenA and TokenB,
// picking the input side from live balances each iteration. A failed swap is
// logged and skipped; a failed approval is returned. The swap is submitted
// with amountOutMinimum = 0, so it carries no slippage protection.
func Swaps(ctx context.Context, env Env, cfg SwapConfig) (bool, error) {
	log := env.log().With(zap.String("action", actionSwap))
	owner := env.Wallet.Address()

	balA, balB, err := tokenBalances(ctx, env, owner)
	if err != nil {
		return false, err
	}
	if balA.Sign() == 0 && balB.Sign() == 0 {
		log.Warn("Nothing to swap: both token balances are zero")
		return false, nil
	}

	n := env.Random.Int(cfg.Txs.Min, cfg.Txs.Max)
	log.Info(fmt.Sprintf("Planning %d swap(s)", n))

	success := 0
	for i := 0; i < n; i++ {
		if i > 0 {
			balA, balB, err = tokenBalances(ctx, env, owner)
			if err != nil {
				return success > 0, err
			}
			if balA.Sign() == 0 && balB.Sign() == 0 {
				log.Warn("Both token balances reached zero, stopping")
				break
			}
		}
		logBalances(log, env, balA, balB)

		in, out, inBal := direction(env, balA, balB)
		amount := chain.WholeUnits(int64(env.Random.Int(cfg.Amount.Min, cfg.Amount.Max)), in.Decimals())
		step := fmt.Sprintf("Swap %d/%d", i+1, n)

		if inBal.Cmp(amount) < 0 {
			env.Metrics.SwapSkipped()
			log.Warn(step+": insufficient balance, skipping",
				zap.String("token", in.Symbol()),
				zap.String("have", chain.FormatUnits(inBal, in.Decimals())),
				zap.String("need", chain.FormatUnits(amount, in.Decimals())))
			continue
		}

		if err := ensureAllowance(ctx, env, in, owner, amount); err != nil {
			env.Metrics.TxFailed(actionApprove, fault.KindOf(err).String())
			log.Error(step+": approval failed", zap.Error(err))
			if serr := env.pauseAfterFailure(ctx, cfg.AttemptPause); serr != nil {
				return success > 0, serr
			}
			return success > 0, err
		}

		log.Info(fmt.Sprintf("%s: %s %s -> %s", step, chain.FormatUnits(amount, in.Decimals()), in.Symbol(), out.Symbol()))
		if err := swapOnce(ctx, env, cfg, in, out, owner, amount); err != nil {
			err = fault.New(fault.PartialSequence, step, err)
			env.Metrics.TxFailed(actionSwap, fault.KindOf(err).String())
			log.Error(step+" failed, continuing", zap.Error(err))
			continue
		}
		success++
		if i < n-1 {
			if err := env.pauseBetweenActions(ctx, cfg.ActionPause); err != nil {
				return success > 0, err
			}
		}
	}

	log.Info(fmt.Sprintf("Completed %d/%d swap(s)", success, n))
	return success > 0, nil
}

func tokenBalances(ctx context.Context, env Env, owner common.Address) (*big.Int, *big.Int, error) {
	a, err := env.TokenA.BalanceOf(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	b, err := env.TokenB.BalanceOf(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func logBalances(log *zap.Logger, env Env, a, b *big.Int) {
	log.Info("Token balances",
		zap.String(env.TokenA.Symbol(), chain.FormatUnits(a, env.TokenA.Decimals())),
		zap.String(env.TokenB.Symbol(), chain.FormatUnits(b, env.TokenB.Decimals())))
}

// direction flips a coin when both sides hold tokens, else forces the funded side.
func direction(env Env, balA, balB *big.Int) (in, out chain.Token, inBal *big.Int) {
	switch {
	case balA.Sign() > 0 && balB.Sign() > 0:
		if env.Random.Coin() {
			return env.TokenA, env.TokenB, balA
		}
		return env.TokenB, env.TokenA, balB
	case balA.Sign() > 0:
		return env.TokenA, env.TokenB, balA
	default:
		return env.TokenB, env.TokenA, balB
	}
}

// ensureAllowance approves exactly amount when the router allowance is short.
func ensureAllowance(ctx context.Context, env Env, token chain.Token, owner common.Address, amount *big.Int) error {
	log := env.log().With(zap.String("action", actionApprove), zap.String("token", token.Symbol()))
	spender := env.Router.Address()

	allowance, err := token.Allowance(ctx, owner, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) >= 0 {
		log.Info("No approval needed")
		return nil
	}

	log.Info("Approving router", zap.String("amount", chain.FormatUnits(amount, token.Decimals())))
	tx, err := token.Approve(ctx, spender, amount)
	if err != nil {
		return err
	}
	env.Metrics.TxSubmitted(actionApprove)
	if _, err := env.Wallet.Wait(ctx, tx); err != nil {
		return err
	}
	env.Metrics.TxConfirmed(actionApprove)
	log.Info("Approval confirmed", zap.String("explorer", env.txURL(tx)))
	return nil
}

func swapOnce(ctx context.Context, env Env, cfg SwapConfig, in, out chain.Token, owner common.Address, amount *big.Int) error {
	tx, err := env.Router.ExactInputSingle(ctx, chain.ExactInputSingleParams{
		TokenIn:           in.Address(),
		TokenOut:          out.Address(),
		Fee:               new(big.Int).SetUint64(uint64(cfg.FeeTier)),
		Recipient:         owner,
		AmountIn:          amount,
		AmountOutMinimum:  new(big.Int),
		SqrtPriceLimitX96: new(big.Int),
	})
	if err != nil {
		return err
	}
	env.Metrics.TxSubmitted(actionSwap)
	env.log().Info("Swap sent", zap.String("hash", tx.Hash().Hex()))

	rcpt, err := env.Wallet.Wait(ctx, tx)
	if err != nil {
		return err
	}
	env.Metrics.TxConfirmed(actionSwap)
	env.log().Info("Swap confirmed",
		zap.Stringer("block", rcpt.BlockNumber),
		zap.String("explorer", env.txURL(tx)))
	return nil
}
