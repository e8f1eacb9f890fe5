// Package txmerge turns raw realtime transaction payloads into canonical
// records and merges them into the bounded pending and history collections
// kept in the presentation cache.
package txmerge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/validator"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ErrMalformedPayload is returned when a raw event cannot be turned into a
// record. Such events are dropped, never applied.
var ErrMalformedPayload = errors.New("malformed transaction payload")

// Status is the lifecycle position of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusExecuted  Status = "executed"
	StatusCancelled Status = "cancelled"
)

// RawTransaction is the transaction row carried by realtime events.
type RawTransaction struct {
	Hash      string    `json:"hash"           validate:"required,tx_hash"`
	Wallet    string    `json:"wallet_address" validate:"required,eth_addr"`
	To        string    `json:"to_address"     validate:"required,eth_addr"`
	Value     string    `json:"value"          validate:"required,wei"`
	Data      string    `json:"data"           validate:"omitempty,startswith=0x"`
	Threshold uint64    `json:"threshold"`
	Executed  bool      `json:"executed"`
	Cancelled bool      `json:"cancelled"`
	CreatedAt time.Time `json:"created_at"`
	Proposer  string    `json:"proposer"       validate:"omitempty,eth_addr"`
}

// Confirmation is an owner's approval of a transaction. Revoked approvals
// are not active.
type Confirmation struct {
	TxHash    string    `json:"tx_hash"`
	Owner     string    `json:"owner"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// TransactionRecord is the canonical, checksummed representation stored in
// the cache collections.
type TransactionRecord struct {
	Hash          string          `json:"hash"           msgpack:"hash"`
	To            string          `json:"to"             msgpack:"to"`
	Value         decimal.Decimal `json:"value"          msgpack:"value"`
	Data          string          `json:"data,omitempty" msgpack:"data"`
	ApprovalCount int             `json:"approval_count" msgpack:"approval_count"`
	Threshold     uint64          `json:"threshold"      msgpack:"threshold"`
	Executed      bool            `json:"executed"       msgpack:"executed"`
	Cancelled     bool            `json:"cancelled"      msgpack:"cancelled"`
	Timestamp     time.Time       `json:"timestamp"      msgpack:"timestamp"`
	Proposer      string          `json:"proposer"       msgpack:"proposer"`
	Approvals     map[string]bool `json:"approvals"      msgpack:"approvals"`

	// Optimistic marks a locally inserted placeholder awaiting the event that
	// confirms it.
	Optimistic bool `json:"optimistic,omitempty" msgpack:"optimistic"`
}

// Status derives the lifecycle position of r. Cancellation wins over
// execution when both flags are set.
func (r TransactionRecord) Status() Status {
	switch {
	case r.Cancelled:
		return StatusCancelled
	case r.Executed:
		return StatusExecuted
	default:
		return StatusPending
	}
}

// IsReady reports whether enough owners approved r for execution.
func (r TransactionRecord) IsReady() bool {
	return r.Threshold > 0 && uint64(r.ApprovalCount) >= r.Threshold
}

// DecodeRaw parses and validates a raw realtime record.
func DecodeRaw(payload json.RawMessage) (RawTransaction, error) {
	var raw RawTransaction
	if err := json.Unmarshal(payload, &raw); err != nil {
		return RawTransaction{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if err := validator.Validate(raw); err != nil {
		return RawTransaction{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	return raw, nil
}

// NormalizeHash returns the stable cache key form of a transaction hash.
func NormalizeHash(hash string) string {
	return strings.ToLower(hash)
}

// ToRecord builds the canonical record of raw using only the active
// confirmations belonging to it.
func ToRecord(raw RawTransaction, confirmations []Confirmation) (TransactionRecord, error) {
	if err := validator.Validate(raw); err != nil {
		return TransactionRecord{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	value, err := decimal.NewFromString(raw.Value)
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	hash := NormalizeHash(raw.Hash)
	approvals := make(map[string]bool)
	for _, c := range confirmations {
		if c.Revoked || NormalizeHash(c.TxHash) != hash || !common.IsHexAddress(c.Owner) {
			continue
		}
		approvals[common.HexToAddress(c.Owner).Hex()] = true
	}

	rec := TransactionRecord{
		Hash:          hash,
		To:            common.HexToAddress(raw.To).Hex(),
		Value:         value,
		Data:          raw.Data,
		ApprovalCount: len(approvals),
		Threshold:     raw.Threshold,
		Executed:      raw.Executed,
		Cancelled:     raw.Cancelled,
		Timestamp:     raw.CreatedAt,
		Approvals:     approvals,
	}
	if raw.Proposer != "" {
		rec.Proposer = common.HexToAddress(raw.Proposer).Hex()
	}

	return rec, nil
}
