package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"liquidityPilot/internal/model"
)

// Options configures the chain client.
type Options struct {
	RPCURL string
	// PrivateKey is the hex-encoded signing key, with or without 0x prefix.
	PrivateKey string
	// PollInterval is the receipt polling cadence.
	PollInterval time.Duration
	// ConfirmTimeout bounds a single confirmation wait. Zero means the wait
	// is unbounded and only the caller's context can end it.
	ConfirmTimeout time.Duration
}

// Client wraps go-ethereum RPC with signing and confirmation helpers. It is
// the transaction backend behind the orchestrator.
type Client struct {
	rpcClient      *rpc.Client
	ethClient      *ethclient.Client
	key            *ecdsa.PrivateKey
	from           common.Address
	chainID        *big.Int
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// NewClient dials the RPC endpoint, derives the caller identity from the
// configured key, and fetches the chain ID used for signing.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(opts.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	rpcClient, err := rpc.DialContext(ctx, opts.RPCURL)
	if err != nil {
		return nil, err
	}
	ethClient := ethclient.NewClient(rpcClient)

	chainID, err := ethClient.ChainID(ctx)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	return &Client{
		rpcClient:      rpcClient,
		ethClient:      ethClient,
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		chainID:        chainID,
		pollInterval:   pollInterval,
		confirmTimeout: opts.ConfirmTimeout,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// From returns the caller's account identity, stable for the whole run.
func (c *Client) From() common.Address {
	return c.from
}

// ChainID returns the chain ID established at dial time.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// SubmitCall signs and broadcasts a contract call and returns its hash.
func (c *Client) SubmitCall(ctx context.Context, to common.Address, input []byte, value *big.Int) (common.Hash, error) {
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := c.ethClient.PendingNonceAt(ctx, c.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pending nonce: %w", err)
	}

	gasPrice, err := c.ethClient.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	gasLimit, err := c.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.from,
		To:    &to,
		Value: value,
		Data:  input,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     input,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := c.ethClient.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}

	return signed.Hash(), nil
}

// AwaitConfirmation polls for the transaction receipt until the transaction
// is included, the transaction reverts, or the context ends.
func (c *Client) AwaitConfirmation(ctx context.Context, hash common.Hash) (model.TxOutcome, error) {
	if c.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.confirmTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return model.TxOutcome{}, fmt.Errorf("transaction %s reverted in block %s", hash.Hex(), receipt.BlockNumber)
			}
			return model.TxOutcome{
				Hash:        hash.Hex(),
				Confirmed:   true,
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
				ConfirmedAt: time.Now().UTC().Format(time.RFC3339Nano),
			}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return model.TxOutcome{}, fmt.Errorf("fetch receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return model.TxOutcome{}, fmt.Errorf("confirmation wait for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
