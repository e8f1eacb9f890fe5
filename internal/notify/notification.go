// Package notify turns successive observations of a wallet into
// deduplicated, user-facing notifications and hands them to the configured
// sinks.
package notify

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gabapcia/walletsync/internal/txmerge"

	"github.com/shopspring/decimal"
)

// Kind identifies the transition a notification reports.
type Kind string

const (
	KindBalanceIncreased     Kind = "balance_increased"
	KindOwnersChanged        Kind = "owners_changed"
	KindThresholdChanged     Kind = "threshold_changed"
	KindModuleEnabled        Kind = "module_enabled"
	KindModuleDisabled       Kind = "module_disabled"
	KindTransactionProposed  Kind = "transaction_proposed"
	KindTransactionReady     Kind = "transaction_ready"
	KindApprovalAdded        Kind = "approval_added"
	KindApprovalRevoked      Kind = "approval_revoked"
	KindTransactionExecuted  Kind = "transaction_executed"
	KindTransactionCancelled Kind = "transaction_cancelled"
)

// Severity tells sinks how prominently to surface a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Entities used in dedup keys for wallet-level transitions.
const (
	EntityBalance   = "balance"
	EntityOwners    = "owners"
	EntityThreshold = "threshold"
)

// Notification is a single user-facing event. Key is stable for a given
// wallet, entity and kind.
type Notification struct {
	Wallet     string          `json:"wallet"`
	Kind       Kind            `json:"kind"`
	Entity     string          `json:"entity"`
	Key        string          `json:"key"`
	Message    string          `json:"message"`
	Severity   Severity        `json:"severity"`
	OccurredAt time.Time       `json:"occurred_at"`
	TxHash     string          `json:"tx_hash,omitempty"`
	Actor      string          `json:"actor,omitempty"`
	Amount     decimal.Decimal `json:"amount,omitzero"`
	Threshold  uint64          `json:"threshold,omitempty"`
	Added      []string        `json:"added,omitempty"`
	Removed    []string        `json:"removed,omitempty"`
}

// DedupKey builds the stable key of a notification.
func DedupKey(wallet, entity string, kind Kind) string {
	return wallet + ":" + entity + ":" + string(kind)
}

// WalletState is one observation of the wallet-level values.
type WalletState struct {
	Balance   decimal.Decimal // wei
	Owners    []string
	Threshold uint64
	Modules   map[string]bool
}

// TransactionSet is one observation of a wallet's transaction collections.
type TransactionSet struct {
	Pending   []txmerge.TransactionRecord
	Executed  []txmerge.TransactionRecord
	Cancelled []txmerge.TransactionRecord
}

// OwnersKey returns the canonical form of an owner set: lowercased, sorted
// and comma joined, so ordering and casing never produce a change.
func OwnersKey(owners []string) string {
	normalized := make([]string, len(owners))
	for i, o := range owners {
		normalized[i] = strings.ToLower(o)
	}
	slices.Sort(normalized)
	return strings.Join(slices.Compact(normalized), ",")
}

// etherAmount renders a wei amount in ether for messages.
func etherAmount(wei decimal.Decimal) string {
	return wei.Shift(-18).String()
}

func shortHex(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

func describe(kind Kind, n Notification) string {
	w := shortHex(n.Wallet)
	switch kind {
	case KindBalanceIncreased:
		return fmt.Sprintf("%s received %s ETH", w, etherAmount(n.Amount))
	case KindOwnersChanged:
		return fmt.Sprintf("%s owners changed (+%d, -%d)", w, len(n.Added), len(n.Removed))
	case KindThresholdChanged:
		return fmt.Sprintf("%s now requires %d approvals", w, n.Threshold)
	case KindModuleEnabled:
		return fmt.Sprintf("%s enabled module %s", w, shortHex(n.Entity))
	case KindModuleDisabled:
		return fmt.Sprintf("%s disabled module %s", w, shortHex(n.Entity))
	case KindTransactionProposed:
		return fmt.Sprintf("%s has a new transaction %s", w, shortHex(n.TxHash))
	case KindTransactionReady:
		return fmt.Sprintf("transaction %s on %s is ready to execute", shortHex(n.TxHash), w)
	case KindApprovalAdded:
		return fmt.Sprintf("%s approved transaction %s", shortHex(n.Actor), shortHex(n.TxHash))
	case KindApprovalRevoked:
		return fmt.Sprintf("%s revoked approval of transaction %s", shortHex(n.Actor), shortHex(n.TxHash))
	case KindTransactionExecuted:
		return fmt.Sprintf("transaction %s on %s was executed", shortHex(n.TxHash), w)
	case KindTransactionCancelled:
		return fmt.Sprintf("transaction %s on %s was cancelled", shortHex(n.TxHash), w)
	}
	return string(kind)
}

func severityOf(kind Kind) Severity {
	switch kind {
	case KindBalanceIncreased, KindTransactionReady, KindTransactionExecuted:
		return SeveritySuccess
	case KindOwnersChanged, KindThresholdChanged, KindModuleEnabled, KindModuleDisabled,
		KindApprovalRevoked, KindTransactionCancelled:
		return SeverityWarning
	}
	return SeverityInfo
}
