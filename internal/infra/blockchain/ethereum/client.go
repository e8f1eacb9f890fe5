// Package ethereum reads multi-owner wallet state from an Ethereum node over
// JSON-RPC.
package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/gabapcia/walletsync/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletsync/internal/pkg/types"
	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// walletABI holds the read-only methods of the wallet contract.
const walletABI = `[
	{"type":"function","name":"getOwners","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"getThreshold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"isModuleEnabled","stateMutability":"view","inputs":[{"name":"module","type":"address"}],"outputs":[{"name":"","type":"bool"}]}
]`

// ErrInvalidResponse is returned when the node answers with data that does
// not decode as the expected type.
var ErrInvalidResponse = errors.New("invalid node response")

// client implements walletsync.ChainReader on top of a JSON-RPC connection.
type client struct {
	conn  jsonrpc.Client
	abi   abi.ABI
	block string
}

// Ensure client implements the walletsync.ChainReader interface at compile time.
var _ walletsync.ChainReader = (*client)(nil)

type Option func(*client)

// WithBlock sets the block tag reads are made against. Defaults to "latest".
func WithBlock(tag string) Option {
	return func(c *client) {
		if tag != "" {
			c.block = tag
		}
	}
}

// NewClient creates a chain reader using the provided JSON-RPC connection.
func NewClient(conn jsonrpc.Client, opts ...Option) (*client, error) {
	parsed, err := abi.JSON(strings.NewReader(walletABI))
	if err != nil {
		return nil, err
	}

	c := &client{
		conn:  conn,
		abi:   parsed,
		block: "latest",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WalletInfo reads the owners, threshold and balance of wallet, and whether
// each of modules is enabled on it. Owners and modules are checksummed.
func (c *client) WalletInfo(ctx context.Context, wallet string, modules []string) (walletsync.WalletInfo, error) {
	if !common.IsHexAddress(wallet) {
		return walletsync.WalletInfo{}, fmt.Errorf("%w: wallet %q", ErrInvalidResponse, wallet)
	}
	address := common.HexToAddress(wallet)

	var info walletsync.WalletInfo

	balance, err := c.balance(ctx, address)
	if err != nil {
		return info, fmt.Errorf("get balance: %w", err)
	}
	info.Balance = balance.Decimal()

	var owners []common.Address
	if err := c.call(ctx, address, &owners, "getOwners"); err != nil {
		return info, fmt.Errorf("get owners: %w", err)
	}
	info.Owners = make([]string, len(owners))
	for i, o := range owners {
		info.Owners[i] = o.Hex()
	}

	var threshold *big.Int
	if err := c.call(ctx, address, &threshold, "getThreshold"); err != nil {
		return info, fmt.Errorf("get threshold: %w", err)
	}
	if threshold == nil || !threshold.IsUint64() {
		return info, fmt.Errorf("%w: threshold out of range", ErrInvalidResponse)
	}
	info.Threshold = threshold.Uint64()

	info.Modules = make(map[string]bool, len(modules))
	for _, m := range modules {
		if !common.IsHexAddress(m) {
			continue
		}
		module := common.HexToAddress(m)

		var enabled bool
		if err := c.call(ctx, address, &enabled, "isModuleEnabled", module); err != nil {
			return info, fmt.Errorf("get module %s status: %w", module.Hex(), err)
		}
		info.Modules[module.Hex()] = enabled
	}

	return info, nil
}

func (c *client) balance(ctx context.Context, address common.Address) (types.Hex, error) {
	result, err := c.conn.Fetch(ctx, "eth_getBalance", address.Hex(), c.block)
	if err != nil {
		return "", err
	}

	var balance types.Hex
	if err := json.Unmarshal(result, &balance); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return balance, nil
}

// call runs a read-only contract call and copies its single output into dst.
func (c *client) call(ctx context.Context, to common.Address, dst any, method string, args ...any) error {
	values, err := c.unpack(ctx, to, method, args...)
	if err != nil {
		return err
	}

	if err := c.abi.Methods[method].Outputs.Copy(dst, values); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

func (c *client) unpack(ctx context.Context, to common.Address, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	result, err := c.conn.Fetch(ctx, "eth_call", map[string]any{
		"to":   to.Hex(),
		"data": hexutil.Encode(data),
	}, c.block)
	if err != nil {
		return nil, err
	}

	var out hexutil.Bytes
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return values, nil
}
