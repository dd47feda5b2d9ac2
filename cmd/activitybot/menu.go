package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/ligun0805/wallet-activity/internal/chain"
	"github.com/ligun0805/wallet-activity/internal/logging"
	"github.com/ligun0805/wallet-activity/internal/orchestrator"
)

type menuItem struct {
	title string
	mode  orchestrator.Mode
	// allowZero lets 0 mean "until stopped".
	allowZero bool
}

var menu = []menuItem{
	{title: "STT Token Sender", mode: orchestrator.ModeSend, allowZero: true},
	{title: "Ping Pong Swaps", mode: orchestrator.ModeSwaps},
	{title: "Combined Random", mode: orchestrator.ModeCombined},
}

func runInteractive(ctx context.Context, flags *rootFlags) error {
	a, err := bootstrap(ctx, flags)
	if err != nil {
		return err
	}
	defer a.close()

	logging.Banner(os.Stdout, "WALLET ACTIVITY BOT")
	a.log.Info("Wallet loaded",
		zap.String("address", chain.ShortAddress(a.env.Wallet.Address())),
		zap.String("chain_id", a.client.ChainID().String()))

	item, err := selectMode()
	if err != nil {
		a.log.Error("No mode selected", zap.Error(err))
		return nil
	}
	loops, err := askLoops(item)
	if err != nil {
		a.log.Error("No loop count given", zap.Error(err))
		return nil
	}

	logging.Banner(os.Stdout, strings.ToUpper(item.title))
	if err := a.orch.Run(ctx, item.mode, loops); err != nil {
		if errors.Is(err, context.Canceled) {
			a.log.Warn("Interrupted, stopping")
			return nil
		}
		logging.Failure(os.Stdout, "%s stopped: %v", item.title, err)
		return err
	}
	logging.Success(os.Stdout, "%s finished", item.title)
	return nil
}

func selectMode() (menuItem, error) {
	titles := make([]string, len(menu))
	for i, m := range menu {
		titles[i] = m.title
	}
	sel := promptui.Select{
		Label: "Select mode",
		Items: titles,
	}
	i, _, err := sel.Run()
	if err != nil {
		return menuItem{}, err
	}
	return menu[i], nil
}

func askLoops(item menuItem) (int, error) {
	label := "How many loops"
	if item.allowZero {
		label += " (0 = until stopped)"
	}
	p := promptui.Prompt{
		Label:    label,
		Default:  "1",
		Validate: loopValidator(item.allowZero),
	}
	s, err := p.Run()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

func loopValidator(allowZero bool) promptui.ValidateFunc {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if allowZero && n < 0 {
			return fmt.Errorf("enter 0 or more")
		}
		if !allowZero && n < 1 {
			return fmt.Errorf("enter 1 or more")
		}
		return nil
	}
}
