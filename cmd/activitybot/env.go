package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ligun0805/wallet-activity/internal/chain"
	"github.com/ligun0805/wallet-activity/internal/logging"
)

func printStatus(ctx context.Context, w io.Writer, a *app) error {
	st := a.st
	native, err := a.env.Wallet.Balance(ctx)
	if err != nil {
		return err
	}
	owner := a.env.Wallet.Address()
	balA, err := a.env.TokenA.BalanceOf(ctx, owner)
	if err != nil {
		return err
	}
	balB, err := a.env.TokenB.BalanceOf(ctx, owner)
	if err != nil {
		return err
	}

	logging.Banner(w, "CONFIG")
	fmt.Fprintln(w, "RPC_URL           :", st.RPCURL)
	fmt.Fprintln(w, "CHAIN_ID          :", a.client.ChainID().String())
	fmt.Fprintln(w, "PRIVATE_KEY       :", maskHex(st.PrivateKeyHex))
	fmt.Fprintln(w, "  -> Address      :", owner.Hex())
	fmt.Fprintln(w, "  -> Balance      :", chain.FormatUnits(native, st.NativeDecimals), st.NativeSymbol)
	fmt.Fprintf(w, "  -> %-12s : %s\n", st.Swaps.TokenA.Symbol, chain.FormatUnits(balA, st.Swaps.TokenA.Decimals))
	fmt.Fprintf(w, "  -> %-12s : %s\n", st.Swaps.TokenB.Symbol, chain.FormatUnits(balB, st.Swaps.TokenB.Decimals))
	fmt.Fprintln(w, "Send txs          :", rangeString(st.Sender.Txs.Min, st.Sender.Txs.Max))
	fmt.Fprintf(w, "Send amount       : [%g, %g] %s\n", st.Sender.Amount.Min, st.Sender.Amount.Max, st.NativeSymbol)
	fmt.Fprintf(w, "Dev chance        : %g%% of %d recipients\n", st.Sender.DevChance, len(st.Sender.Recipients))
	fmt.Fprintln(w, "Swap txs          :", rangeString(st.Swaps.Txs.Min, st.Swaps.Txs.Max))
	fmt.Fprintln(w, "Swap amount       :", rangeString(st.Swaps.Amount.Min, st.Swaps.Amount.Max), "tokens")
	fmt.Fprintln(w, "Router            :", st.Swaps.Router.Hex(), "fee", st.Swaps.FeeTier)
	fmt.Fprintf(w, "Action pause      : [%g, %g]s\n", st.PauseBetweenActions.Min, st.PauseBetweenActions.Max)
	fmt.Fprintln(w, "Attempt pause     :", rangeString(st.PauseBetweenAttempts.Min, st.PauseBetweenAttempts.Max)+"s")
	fmt.Fprintf(w, "Retry             : %d attempts, %s initial, x%g\n", st.Attempts, st.RetryInitialDelay, st.RetryBackoff)
	fmt.Fprintf(w, "Minimum balance   : %g %s\n", st.MinimumBalance, st.NativeSymbol)
	fmt.Fprintln(w, "BaseFeeMul        :", st.BasefeeMul)
	return nil
}

func rangeString(min, max int) string { return fmt.Sprintf("[%d, %d]", min, max) }

func maskHex(h string) string {
	h = strings.TrimSpace(h)
	if len(h) <= 10 {
		return "***"
	}
	return h[:6] + "…" + h[len(h)-4:]
}

// die prints an error and exits. On an interactive console it waits for
// Enter first so a double-clicked window does not close instantly.
func die(message string) {
	fmt.Fprintln(os.Stderr, "Error:", message)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Press Enter to close...")
		_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')
	}
	os.Exit(1)
}
