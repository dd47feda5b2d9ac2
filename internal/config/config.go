package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/ligun0805/wallet-activity/internal/fault"
)

type IntRange struct {
	Min int
	Max int
}

type FloatRange struct {
	Min float64
	Max float64
}

type Token struct {
	Symbol   string
	Address  common.Address
	Decimals int
}

// SenderSettings bound the native transfer action.
type SenderSettings struct {
	Txs        IntRange
	DevChance  float64 // percent
	Amount     FloatRange
	Recipients []common.Address
}

// SwapSettings bound the ping-pong swap action. Amount is in whole tokens.
type SwapSettings struct {
	Txs     IntRange
	Amount  IntRange
	TokenA  Token
	TokenB  Token
	Router  common.Address
	FeeTier uint32
}

// Settings keeps all configuration options. Command-line overrides are applied
// right after Load; nothing mutates it once a run starts.
type Settings struct {
	RPCURL         string
	ChainID        int64 // 0 = ask the node
	ExplorerURL    string
	PrivateKeyHex  string
	NativeSymbol   string
	NativeDecimals int

	RPCRequestsPerSecond float64
	ConfirmTimeout       time.Duration
	BasefeeMul           int64

	LogLevel    string
	MetricsAddr string

	Sender SenderSettings
	Swaps  SwapSettings

	PauseBetweenActions  FloatRange // seconds
	PauseBetweenAttempts IntRange   // whole seconds
	Attempts             int
	RetryInitialDelay    time.Duration
	RetryBackoff         float64
	MinimumBalance       float64 // native units
}

var defaultRecipients = []string{
	"0xDA1feA7873338F34C6915A44028aA4D9aBA1346B",
	"0x018604C67a7423c03dE3057a49709aaD1D178B85",
	"0xcF8D30A5Ee0D9d5ad1D7087822bA5Bab1081FdB7",
	"0x95222290DD7278Aa3Ddd389Cc1E1d165CC4BAfe5",
}

var defaults = map[string]any{
	"rpc_url":         "https://dream-rpc.somnia.network",
	"chain_id":        50312,
	"explorer_url":    "https://shannon-explorer.somnia.network/tx/",
	"private_key":     "",
	"native_symbol":   "STT",
	"native_decimals": 18,
	"rpc_rps":         10.0,
	"confirm_timeout": "2m",
	"basefee_mul":     2,
	"log_level":       "info",
	"metrics_addr":    "",

	"send.min_txs":    1,
	"send.max_txs":    3,
	"send.dev_chance": 20.0,
	"send.min_amount": 0.0001,
	"send.max_amount": 0.0009,
	"send.recipients": strings.Join(defaultRecipients, ","),

	"swap.min_txs":        1,
	"swap.max_txs":        3,
	"swap.min_amount":     100,
	"swap.max_amount":     100,
	"swap.token_a":        "0x33e7fab0a8a5da1a923180989bd617c9c2d1c493",
	"swap.token_a_symbol": "PING",
	"swap.token_b":        "0x9beaA0016c22B646Ac311Ab171270B0ECf23098F",
	"swap.token_b_symbol": "PONG",
	"swap.token_decimals": 18,
	"swap.router":         "0x6AAC14f090A35EeA150705f72D90E4CDC4a49b2C",
	"swap.fee_tier":       500,

	"pause.actions_min":   2.0,
	"pause.actions_max":   5.0,
	"pause.attempts_min":  5,
	"pause.attempts_max":  10,
	"attempts":            3,
	"retry.initial_delay": "1s",
	"retry.backoff":       2.0,
	"minimum_balance":     0.0001,
}

// Load reads settings from compiled-in defaults, an optional YAML/TOML/JSON
// file, and the environment. Env keys are accepted in both UPPER_CASE and
// lower_case, dots becoming underscores (send.min_txs -> SEND_MIN_TXS).
func Load(file string) (*Settings, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
		env := strings.ReplaceAll(k, ".", "_")
		_ = v.BindEnv(k, strings.ToUpper(env), env)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fault.New(fault.Configuration, "read config "+file, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Settings, error) {
	var errs []error
	addr := func(key string) common.Address {
		s := strings.TrimSpace(v.GetString(key))
		if !common.IsHexAddress(s) {
			errs = append(errs, fmt.Errorf("%s: %q is not a hex address", key, s))
			return common.Address{}
		}
		return common.HexToAddress(s)
	}
	duration := func(key string) time.Duration {
		d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid duration: %w", key, err))
		}
		return d
	}

	st := &Settings{}
	st.RPCURL = strings.TrimSpace(v.GetString("rpc_url"))
	st.ChainID = v.GetInt64("chain_id")
	st.ExplorerURL = v.GetString("explorer_url")
	st.PrivateKeyHex = strings.TrimSpace(v.GetString("private_key"))
	st.NativeSymbol = v.GetString("native_symbol")
	st.NativeDecimals = v.GetInt("native_decimals")
	st.RPCRequestsPerSecond = v.GetFloat64("rpc_rps")
	st.ConfirmTimeout = duration("confirm_timeout")
	st.BasefeeMul = v.GetInt64("basefee_mul")
	st.LogLevel = strings.ToLower(v.GetString("log_level"))
	st.MetricsAddr = v.GetString("metrics_addr")

	st.Sender.Txs = IntRange{v.GetInt("send.min_txs"), v.GetInt("send.max_txs")}
	st.Sender.DevChance = v.GetFloat64("send.dev_chance")
	st.Sender.Amount = FloatRange{v.GetFloat64("send.min_amount"), v.GetFloat64("send.max_amount")}
	for _, r := range stringList(v.Get("send.recipients")) {
		if !common.IsHexAddress(r) {
			errs = append(errs, fmt.Errorf("send.recipients: %q is not a hex address", r))
			continue
		}
		st.Sender.Recipients = append(st.Sender.Recipients, common.HexToAddress(r))
	}

	decimals := v.GetInt("swap.token_decimals")
	st.Swaps.Txs = IntRange{v.GetInt("swap.min_txs"), v.GetInt("swap.max_txs")}
	st.Swaps.Amount = IntRange{v.GetInt("swap.min_amount"), v.GetInt("swap.max_amount")}
	st.Swaps.TokenA = Token{Symbol: v.GetString("swap.token_a_symbol"), Address: addr("swap.token_a"), Decimals: decimals}
	st.Swaps.TokenB = Token{Symbol: v.GetString("swap.token_b_symbol"), Address: addr("swap.token_b"), Decimals: decimals}
	st.Swaps.Router = addr("swap.router")
	st.Swaps.FeeTier = v.GetUint32("swap.fee_tier")

	st.PauseBetweenActions = FloatRange{v.GetFloat64("pause.actions_min"), v.GetFloat64("pause.actions_max")}
	st.PauseBetweenAttempts = IntRange{v.GetInt("pause.attempts_min"), v.GetInt("pause.attempts_max")}
	st.Attempts = v.GetInt("attempts")
	st.RetryInitialDelay = duration("retry.initial_delay")
	st.RetryBackoff = v.GetFloat64("retry.backoff")
	st.MinimumBalance = v.GetFloat64("minimum_balance")

	errs = append(errs, st.validate()...)
	if len(errs) > 0 {
		return nil, fault.New(fault.Configuration, "configuration validation failed", errors.Join(errs...))
	}
	return st, nil
}

func (st *Settings) validate() []error {
	var errs []error
	if st.RPCURL == "" {
		errs = append(errs, errors.New("rpc_url is required"))
	}
	intRange := func(name string, r IntRange, lowest int) {
		if r.Min < lowest || r.Max < r.Min {
			errs = append(errs, fmt.Errorf("%s: invalid range [%d, %d]", name, r.Min, r.Max))
		}
	}
	floatRange := func(name string, r FloatRange) {
		if r.Min < 0 || r.Max < r.Min {
			errs = append(errs, fmt.Errorf("%s: invalid range [%g, %g]", name, r.Min, r.Max))
		}
	}
	intRange("send txs", st.Sender.Txs, 1)
	intRange("swap txs", st.Swaps.Txs, 1)
	intRange("swap amount", st.Swaps.Amount, 1)
	intRange("pause between attempts", st.PauseBetweenAttempts, 0)
	floatRange("send amount", st.Sender.Amount)
	floatRange("pause between actions", st.PauseBetweenActions)
	if st.Sender.Amount.Max <= 0 {
		errs = append(errs, errors.New("send amount: max must be positive"))
	}
	if st.Sender.DevChance < 0 || st.Sender.DevChance > 100 {
		errs = append(errs, fmt.Errorf("send.dev_chance %g outside [0, 100]", st.Sender.DevChance))
	}
	if st.Sender.DevChance > 0 && len(st.Sender.Recipients) == 0 {
		errs = append(errs, errors.New("send.recipients is empty but dev_chance > 0"))
	}
	if st.Attempts < 1 {
		errs = append(errs, fmt.Errorf("attempts must be >= 1, got %d", st.Attempts))
	}
	if st.RetryBackoff < 1 {
		errs = append(errs, fmt.Errorf("retry.backoff must be >= 1, got %g", st.RetryBackoff))
	}
	if st.NativeDecimals < 4 || st.Swaps.TokenA.Decimals < 0 {
		errs = append(errs, errors.New("token decimals out of range"))
	}
	if st.RPCRequestsPerSecond <= 0 {
		errs = append(errs, errors.New("rpc_rps must be positive"))
	}
	if st.BasefeeMul < 1 {
		errs = append(errs, errors.New("basefee_mul must be >= 1"))
	}
	return errs
}

// RequirePrivateKey fails fast when no signing key is configured.
func (st *Settings) RequirePrivateKey() error {
	if st.PrivateKeyHex == "" {
		return fault.Errorf(fault.Configuration, "PRIVATE_KEY not found in environment or .env file")
	}
	return nil
}

func stringList(raw any) []string {
	var parts []string
	switch x := raw.(type) {
	case string:
		parts = strings.Split(x, ",")
	case []string:
		parts = x
	case []any:
		for _, p := range x {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
