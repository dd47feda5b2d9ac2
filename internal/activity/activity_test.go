package activity

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ligun0805/wallet-activity/internal/chain"
	"github.com/ligun0805/wallet-activity/internal/chain/chaintest"
	"github.com/ligun0805/wallet-activity/internal/config"
	"github.com/ligun0805/wallet-activity/internal/random"
)

var (
	tokenAAddr = common.HexToAddress("0x33e7fab0a8a5da1a923180989bd617c9c2d1c493")
	tokenBAddr = common.HexToAddress("0x9beaa0016c22b646ac311ab171270b0ecf23098f")
	routerAddr = common.HexToAddress("0x6aac14f090a35eea150705f72d90e4cdc4a49b2c")
	freshAddr  = common.HexToAddress("0x00000000000000000000000000000000000f7e54")
	devs       = []common.Address{
		common.HexToAddress("0xda1fea7873338f34c6915a44028aa4d9aba1346b"),
		common.HexToAddress("0x018604c67a7423c03de3057a49709aad1d178b85"),
	}
	errRPC = errors.New("rpc unavailable")
)

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func native(units float64) *big.Int { return chain.FloatUnits(units, 18) }

func tokens(n int64) *big.Int { return chain.WholeUnits(n, 18) }

type fixture struct {
	wallet *chaintest.Wallet
	tokenA *chaintest.Token
	tokenB *chaintest.Token
	router *chaintest.Router
	sleep  *recordingSleeper
	env    Env
}

func newFixture(gen *random.Generator) *fixture {
	f := &fixture{
		wallet: &chaintest.Wallet{Addr: common.HexToAddress("0xabc"), Bal: new(big.Int)},
		tokenA: &chaintest.Token{Addr: tokenAAddr, Sym: "PING", Dec: 18, Bal: new(big.Int)},
		tokenB: &chaintest.Token{Addr: tokenBAddr, Sym: "PONG", Dec: 18, Bal: new(big.Int)},
		sleep:  &recordingSleeper{},
	}
	f.router = chaintest.NewRouter(routerAddr, f.tokenA, f.tokenB)
	if gen == nil {
		gen = random.New()
	}
	f.env = Env{
		Wallet:         f.wallet,
		TokenA:         f.tokenA,
		TokenB:         f.tokenB,
		Router:         f.router,
		Random:         gen,
		Sleep:          f.sleep.sleep,
		NewAddress:     func() (common.Address, error) { return freshAddr, nil },
		Explorer:       "https://explorer.test/tx/",
		NativeSymbol:   "STT",
		NativeDecimals: 18,
	}
	return f
}

func sendConfig(txs config.IntRange, devChance float64, amount config.FloatRange) SendConfig {
	return SendConfig{
		SenderSettings: config.SenderSettings{
			Txs:        txs,
			DevChance:  devChance,
			Amount:     amount,
			Recipients: devs,
		},
		ActionPause:  config.FloatRange{Min: 2, Max: 5},
		AttemptPause: config.IntRange{Min: 5, Max: 10},
	}
}

func swapConfig(txs config.IntRange) SwapConfig {
	return SwapConfig{
		Txs:          txs,
		Amount:       config.IntRange{Min: 100, Max: 100},
		FeeTier:      500,
		ActionPause:  config.FloatRange{Min: 2, Max: 5},
		AttemptPause: config.IntRange{Min: 5, Max: 10},
	}
}
