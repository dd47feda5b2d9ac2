package activity

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/ligun0805/wallet-activity/internal/chain"
	"github.com/ligun0805/wallet-activity/internal/fault"
)

const actionSend = "send"

// HaircutValue rounds amount to 4 decimals and returns 95% of it in minor units.
func HaircutValue(amount float64, decimals int) *big.Int {
	tenThousandths := big.NewInt(int64(math.Round(amount * 10000)))
	v := new(big.Int).Mul(tenThousandths, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	v.Mul(v, big.NewInt(95))
	return v.Div(v, big.NewInt(10000*100))
}

// SendTokens performs a random number of native transfers. It returns false
// without sending when the wallet is empty. The first failed transfer pauses
// and is returned to the caller; there is no local retry.
func SendTokens(ctx context.Context, env Env, cfg SendConfig) (bool, error) {
	log := env.log().With(zap.String("action", actionSend))

	bal, err := env.Wallet.Balance(ctx)
	if err != nil {
		return false, err
	}
	if bal.Sign() == 0 {
		log.Warn("No balance to send", zap.String("wallet", chain.ShortAddress(env.Wallet.Address())))
		return false, nil
	}

	n := env.Random.Int(cfg.Txs.Min, cfg.Txs.Max)
	log.Info(fmt.Sprintf("Planning %d transaction(s)", n),
		zap.String("balance", chain.FormatUnits(bal, env.NativeDecimals)+" "+env.NativeSymbol))

	for i := 1; i <= n; i++ {
		to, dev, err := pickRecipient(env, cfg)
		if err != nil {
			return false, fault.New(fault.Transient, "new recipient", err)
		}
		kind := "random"
		if dev {
			kind = "dev"
		}
		log.Info(fmt.Sprintf("Tx %d/%d: Sending to %s wallet", i, n, kind), zap.String("to", chain.ShortAddress(to)))

		if err := sendOne(ctx, env, cfg, to); err != nil {
			env.Metrics.TxFailed(actionSend, fault.KindOf(err).String())
			log.Error(fmt.Sprintf("Tx %d/%d failed", i, n), zap.Error(err))
			if serr := env.pauseAfterFailure(ctx, cfg.AttemptPause); serr != nil {
				return false, serr
			}
			return false, err
		}
		if i < n {
			if err := env.pauseBetweenActions(ctx, cfg.ActionPause); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// pickRecipient draws a dev address with DevChance percent, otherwise a fresh one.
func pickRecipient(env Env, cfg SendConfig) (common.Address, bool, error) {
	if len(cfg.Recipients) > 0 && env.Random.Chance(cfg.DevChance) {
		return cfg.Recipients[env.Random.Index(len(cfg.Recipients))], true, nil
	}
	a, err := env.newAddress()
	return a, false, err
}

func sendOne(ctx context.Context, env Env, cfg SendConfig, to common.Address) error {
	log := env.log().With(zap.String("action", actionSend))
	dec := env.NativeDecimals

	bal, err := env.Wallet.Balance(ctx)
	if err != nil {
		return err
	}
	if minUnits := chain.FloatUnits(cfg.Amount.Min, dec); bal.Cmp(minUnits) < 0 {
		return fault.Errorf(fault.InsufficientBalance, "balance %s below minimum amount %s",
			chain.FormatUnits(bal, dec), chain.FormatUnits(minUnits, dec))
	}

	amount := env.Random.Float(cfg.Amount.Min, cfg.Amount.Max)
	value := HaircutValue(amount, dec)
	if bal.Cmp(value) < 0 {
		return fault.Errorf(fault.InsufficientBalance, "balance %s below value %s",
			chain.FormatUnits(bal, dec), chain.FormatUnits(value, dec))
	}

	gas, err := env.Wallet.EstimateTransfer(ctx, to, value)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("Amount: %.4f %s", amount, env.NativeSymbol),
		zap.String("value", chain.FormatUnits(value, dec)),
		zap.Uint64("gas", gas))

	tx, err := env.Wallet.SendTransfer(ctx, to, value, gas)
	if err != nil {
		return err
	}
	env.Metrics.TxSubmitted(actionSend)
	log.Info("Transaction sent", zap.String("hash", tx.Hash().Hex()))

	rcpt, err := env.Wallet.Wait(ctx, tx)
	if err != nil {
		return err
	}
	env.Metrics.TxConfirmed(actionSend)
	log.Info("Transaction confirmed",
		zap.Stringer("block", rcpt.BlockNumber),
		zap.String("explorer", env.txURL(tx)))
	return nil
}
