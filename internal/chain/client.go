package chain

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"github.com/ligun0805/wallet-activity/internal/fault"
)

type Options struct {
	RPCURL            string
	ChainID           int64 // 0 = ask the node
	RequestsPerSecond float64
	ConfirmTimeout    time.Duration
	BasefeeMul        int64
}

// backend throttles the calls that hit the provider hardest. It satisfies
// bind.ContractBackend and bind.DeployBackend through the embedded client.
type backend struct {
	*ethclient.Client
	lim *rate.Limiter
}

func (b *backend) wait(ctx context.Context) error {
	if b.lim == nil {
		return nil
	}
	return b.lim.Wait(ctx)
}

func (b *backend) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.Client.CallContract(ctx, msg, block)
}

func (b *backend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if err := b.wait(ctx); err != nil {
		return 0, err
	}
	return b.Client.EstimateGas(ctx, msg)
}

func (b *backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	return b.Client.SendTransaction(ctx, tx)
}

func (b *backend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.Client.TransactionReceipt(ctx, hash)
}

func (b *backend) BalanceAt(ctx context.Context, acct common.Address, block *big.Int) (*big.Int, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.Client.BalanceAt(ctx, acct, block)
}

// Client is a rate-limited connection to one chain.
type Client struct {
	be             *backend
	chainID        *big.Int
	confirmTimeout time.Duration
	basefeeMul     int64
}

// Dial connects with keep-alives and sane timeouts and resolves the chain ID.
func Dial(ctx context.Context, o Options) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}
	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
	rc, err := rpc.DialHTTPWithClient(o.RPCURL, httpClient)
	if err != nil {
		return nil, fault.New(fault.Configuration, "dial "+o.RPCURL, err)
	}
	var lim *rate.Limiter
	if o.RequestsPerSecond > 0 {
		burst := int(o.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(o.RequestsPerSecond), burst)
	}
	c := &Client{
		be:             &backend{Client: ethclient.NewClient(rc), lim: lim},
		confirmTimeout: o.ConfirmTimeout,
		basefeeMul:     o.BasefeeMul,
	}
	if c.basefeeMul < 1 {
		c.basefeeMul = 2
	}
	if o.ChainID > 0 {
		c.chainID = big.NewInt(o.ChainID)
		return c, nil
	}
	id, err := c.be.ChainID(ctx)
	if err != nil {
		c.Close()
		return nil, classify("chain id", err)
	}
	c.chainID = id
	return c, nil
}

func (c *Client) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

func (c *Client) Close() { c.be.Close() }

type fees struct {
	legacy   bool
	gasPrice *big.Int
	tip      *big.Int
	feeCap   *big.Int
}

// currentFees prices a tx at baseFee*mul + tip, falling back to a legacy gas
// price on chains without a base fee.
func (c *Client) currentFees(ctx context.Context) (fees, error) {
	baseFee, err := latestBaseFee(ctx, c.be.Client)
	if errors.Is(err, errNoBaseFee) {
		gp, err := c.be.SuggestGasPrice(ctx)
		if err != nil {
			return fees{}, classify("gas price", err)
		}
		return fees{legacy: true, gasPrice: gp}, nil
	}
	if err != nil {
		return fees{}, classify("base fee", err)
	}
	tip, err := c.be.SuggestGasTipCap(ctx)
	if err != nil {
		return fees{}, classify("tip cap", err)
	}
	feeCap := new(big.Int).Mul(baseFee, big.NewInt(c.basefeeMul))
	feeCap.Add(feeCap, tip)
	return fees{tip: tip, feeCap: feeCap}, nil
}

var errNoBaseFee = errors.New("no baseFee (pre-1559?)")

func latestBaseFee(ctx context.Context, ec *ethclient.Client) (*big.Int, error) {
	h, err := ec.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	if h.BaseFee == nil {
		return nil, errNoBaseFee
	}
	return new(big.Int).Set(h.BaseFee), nil
}

// waitMined waits for tx within the confirm timeout and checks its status.
func (c *Client) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if c.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.confirmTimeout)
		defer cancel()
	}
	rcpt, err := bind.WaitMined(ctx, c.be, tx)
	if err != nil {
		return nil, classify("wait "+tx.Hash().Hex(), err)
	}
	if rcpt.Status != types.ReceiptStatusSuccessful {
		return rcpt, fault.Errorf(fault.Transient, "tx %s failed in block %s", tx.Hash().Hex(), rcpt.BlockNumber)
	}
	return rcpt, nil
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "Too Many Requests") || strings.Contains(s, "-32005")
}

func isInsufficientFunds(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "insufficient funds") || strings.Contains(s, "exceeds balance")
}

// classify tags node errors with a fault kind.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case isInsufficientFunds(err):
		return fault.New(fault.InsufficientBalance, op, err)
	case isRateLimitError(err):
		return fault.New(fault.Transient, op+" (rate limited)", err)
	}
	return fault.New(fault.Transient, op, err)
}
