package walletsync

import (
	"context"
	"time"

	"github.com/gabapcia/walletsync/internal/txmerge"

	"github.com/shopspring/decimal"
)

// WalletInfo is the on-chain state of a wallet.
type WalletInfo struct {
	Owners    []string        `json:"owners"    msgpack:"owners"`
	Threshold uint64          `json:"threshold" msgpack:"threshold"`
	Balance   decimal.Decimal `json:"balance"   msgpack:"balance"` // wei
	Modules   map[string]bool `json:"modules"   msgpack:"modules"` // module address -> enabled
}

// ChainReader reads wallet state from the chain.
type ChainReader interface {
	// WalletInfo returns the owners, threshold and balance of wallet, and the
	// enabled flag of each of modules.
	WalletInfo(ctx context.Context, wallet string, modules []string) (WalletInfo, error)
}

// QueryLayer answers point queries used to enrich and resync realtime data.
type QueryLayer interface {
	// ActiveConfirmations returns the non-revoked confirmations of txHash.
	ActiveConfirmations(ctx context.Context, txHash string) ([]txmerge.Confirmation, error)

	// PendingTransactions returns up to limit pending transactions, newest first.
	PendingTransactions(ctx context.Context, wallet string, limit int) ([]txmerge.RawTransaction, error)

	// HistoryTransactions returns up to limit executed or cancelled
	// transactions, newest first.
	HistoryTransactions(ctx context.Context, wallet string, limit int) ([]txmerge.RawTransaction, error)

	// WalletModules returns the module addresses known for wallet.
	WalletModules(ctx context.Context, wallet string) ([]string, error)
}

// Deposit is a native transfer into a wallet, as carried by the deposits topic.
type Deposit struct {
	TxHash    string    `json:"tx_hash"        validate:"required,tx_hash"`
	Wallet    string    `json:"wallet_address" validate:"required,eth_addr"`
	From      string    `json:"from_address"   validate:"omitempty,eth_addr"`
	Value     string    `json:"value"          validate:"required,wei"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache key prefixes. Each is followed by ":<checksummed wallet>".
const (
	KeyPending   = "pending"
	KeyExecuted  = "executed"
	KeyCancelled = "cancelled"
	KeyInfo      = "info"
)

// CacheKey returns the cache key of kind for wallet.
func CacheKey(kind, wallet string) string {
	return kind + ":" + wallet
}

// CacheKeys returns every cache key held for wallet.
func CacheKeys(wallet string) []string {
	return []string{
		CacheKey(KeyPending, wallet),
		CacheKey(KeyExecuted, wallet),
		CacheKey(KeyCancelled, wallet),
		CacheKey(KeyInfo, wallet),
	}
}
