// Package postgres implements the walletsync query layer on the tables the
// realtime stream is fed from.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/gabapcia/walletsync/internal/txmerge"
	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

const transactionColumns = `hash, wallet_address, to_address, value::text, data, threshold, executed, cancelled, created_at, proposer`

type client struct {
	pool *pgxpool.Pool
}

func (c *client) Close() {
	c.pool.Close()
}

// NewClient opens a pool on dsn and checks it is reachable.
func NewClient(ctx context.Context, dsn string) (*client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &client{pool: pool}, nil
}

// Migrate creates the tables the query layer reads, if missing.
func (c *client) Migrate(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, schema)
	return err
}

func scanTransaction(row pgx.CollectableRow) (txmerge.RawTransaction, error) {
	var tx txmerge.RawTransaction
	err := row.Scan(
		&tx.Hash,
		&tx.Wallet,
		&tx.To,
		&tx.Value,
		&tx.Data,
		&tx.Threshold,
		&tx.Executed,
		&tx.Cancelled,
		&tx.CreatedAt,
		&tx.Proposer,
	)
	return tx, err
}

// ActiveConfirmations returns the non-revoked confirmations of txHash,
// oldest first.
func (c *client) ActiveConfirmations(ctx context.Context, txHash string) ([]txmerge.Confirmation, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT tx_hash, owner, revoked, created_at
		FROM confirmations
		WHERE lower(tx_hash) = $1 AND NOT revoked
		ORDER BY created_at
	`, strings.ToLower(txHash))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (txmerge.Confirmation, error) {
		var conf txmerge.Confirmation
		err := row.Scan(&conf.TxHash, &conf.Owner, &conf.Revoked, &conf.CreatedAt)
		return conf, err
	})
}

// PendingTransactions returns up to limit transactions neither executed nor
// cancelled, newest first.
func (c *client) PendingTransactions(ctx context.Context, wallet string, limit int) ([]txmerge.RawTransaction, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE lower(wallet_address) = $1 AND NOT executed AND NOT cancelled
		ORDER BY created_at DESC
		LIMIT $2
	`, strings.ToLower(wallet), limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanTransaction)
}

// HistoryTransactions returns up to limit executed or cancelled
// transactions, newest first.
func (c *client) HistoryTransactions(ctx context.Context, wallet string, limit int) ([]txmerge.RawTransaction, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE lower(wallet_address) = $1 AND (executed OR cancelled)
		ORDER BY created_at DESC
		LIMIT $2
	`, strings.ToLower(wallet), limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanTransaction)
}

// WalletModules returns the module addresses recorded for wallet.
func (c *client) WalletModules(ctx context.Context, wallet string) ([]string, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT module_address
		FROM wallet_modules
		WHERE lower(wallet_address) = $1
		ORDER BY module_address
	`, strings.ToLower(wallet))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Ensure the client satisfies the walletsync.QueryLayer interface at compile time.
var _ walletsync.QueryLayer = new(client)
