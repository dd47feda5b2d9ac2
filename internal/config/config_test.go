package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/wallet-activity/internal/fault"
)

func TestLoadDefaults(t *testing.T) {
	st, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://dream-rpc.somnia.network", st.RPCURL)
	assert.EqualValues(t, 50312, st.ChainID)
	assert.Equal(t, "https://shannon-explorer.somnia.network/tx/", st.ExplorerURL)
	assert.Equal(t, IntRange{1, 3}, st.Sender.Txs)
	assert.Equal(t, 20.0, st.Sender.DevChance)
	assert.Equal(t, FloatRange{0.0001, 0.0009}, st.Sender.Amount)
	assert.Len(t, st.Sender.Recipients, 4)
	assert.Equal(t, IntRange{1, 3}, st.Swaps.Txs)
	assert.Equal(t, IntRange{100, 100}, st.Swaps.Amount)
	assert.Equal(t, common.HexToAddress("0x33e7fab0a8a5da1a923180989bd617c9c2d1c493"), st.Swaps.TokenA.Address)
	assert.Equal(t, "PONG", st.Swaps.TokenB.Symbol)
	assert.EqualValues(t, 500, st.Swaps.FeeTier)
	assert.Equal(t, FloatRange{2, 5}, st.PauseBetweenActions)
	assert.Equal(t, IntRange{5, 10}, st.PauseBetweenAttempts)
	assert.Equal(t, 3, st.Attempts)
	assert.Equal(t, time.Second, st.RetryInitialDelay)
	assert.Equal(t, 2.0, st.RetryBackoff)
	assert.Equal(t, 0.0001, st.MinimumBalance)
	assert.Equal(t, 2*time.Minute, st.ConfirmTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PRIVATE_KEY", "0xabc")
	t.Setenv("SEND_MIN_TXS", "2")
	t.Setenv("send_max_txs", "7")
	t.Setenv("SEND_RECIPIENTS", " 0x018604C67a7423c03dE3057a49709aaD1D178B85 , ")
	t.Setenv("RETRY_INITIAL_DELAY", "250ms")

	st, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", st.PrivateKeyHex)
	assert.Equal(t, IntRange{2, 7}, st.Sender.Txs)
	assert.Equal(t, []common.Address{common.HexToAddress("0x018604C67a7423c03dE3057a49709aaD1D178B85")}, st.Sender.Recipients)
	assert.Equal(t, 250*time.Millisecond, st.RetryInitialDelay)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	body := `
attempts: 5
swap:
  min_amount: 10
  max_amount: 20
send:
  recipients:
    - "0x95222290DD7278Aa3Ddd389Cc1E1d165CC4BAfe5"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	st, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Attempts)
	assert.Equal(t, IntRange{10, 20}, st.Swaps.Amount)
	assert.Equal(t, []common.Address{common.HexToAddress("0x95222290DD7278Aa3Ddd389Cc1E1d165CC4BAfe5")}, st.Sender.Recipients)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Setenv("SEND_MIN_TXS", "4")
	t.Setenv("SEND_MAX_TXS", "1")
	t.Setenv("ATTEMPTS", "0")
	t.Setenv("SWAP_ROUTER", "not-an-address")

	_, err := Load("")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Configuration))
	assert.ErrorContains(t, err, "send txs")
	assert.ErrorContains(t, err, "attempts must be >= 1")
	assert.ErrorContains(t, err, "swap.router")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Configuration))
}

func TestRequirePrivateKey(t *testing.T) {
	st := &Settings{}
	err := st.RequirePrivateKey()
	require.Error(t, err)
	assert.False(t, fault.IsRetryable(err))

	st.PrivateKeyHex = "0x01"
	assert.NoError(t, st.RequirePrivateKey())
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, stringList("a, ,b"))
	assert.Equal(t, []string{"x"}, stringList([]any{" x ", ""}))
	assert.Empty(t, stringList(nil))
}
