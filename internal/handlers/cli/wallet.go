package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/urfave/cli/v3"
)

func walletFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "wallet",
		Usage:    "Wallet address",
		Required: true,
	}
}

func writeJSON(c *cli.Command, v any) error {
	var out io.Writer = os.Stdout
	if w := c.Root().Writer; w != nil {
		out = w
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// pendingCommand prints the cached pending transactions of a wallet.
//
//	walletsync pending --wallet 0xABC...
func pendingCommand(svc walletsync.Service) *cli.Command {
	return &cli.Command{
		Name:        "pending",
		Description: "Prints the cached pending transactions of a wallet as JSON.",
		Flags:       []cli.Flag{walletFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			set, err := svc.Transactions(ctx, c.String("wallet"))
			if err != nil {
				return err
			}
			return writeJSON(c, set.Pending)
		},
	}
}

// historyCommand prints the cached executed or cancelled transactions.
//
//	walletsync history --wallet 0xABC... --status cancelled
func historyCommand(svc walletsync.Service) *cli.Command {
	return &cli.Command{
		Name:        "history",
		Description: "Prints the cached executed or cancelled transactions of a wallet as JSON.",
		Flags: []cli.Flag{
			walletFlag(),
			&cli.StringFlag{
				Name:  "status",
				Usage: "executed or cancelled",
				Value: walletsync.KeyExecuted,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			status := c.String("status")
			if status != walletsync.KeyExecuted && status != walletsync.KeyCancelled {
				return fmt.Errorf("unknown status %q", status)
			}

			set, err := svc.Transactions(ctx, c.String("wallet"))
			if err != nil {
				return err
			}

			if status == walletsync.KeyCancelled {
				return writeJSON(c, set.Cancelled)
			}
			return writeJSON(c, set.Executed)
		},
	}
}

// infoCommand prints the cached owners, threshold, balance and modules.
func infoCommand(svc walletsync.Service) *cli.Command {
	return &cli.Command{
		Name:        "info",
		Description: "Prints the cached on-chain state of a wallet as JSON.",
		Flags:       []cli.Flag{walletFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			info, err := svc.Info(ctx, c.String("wallet"))
			if err != nil {
				return err
			}
			return writeJSON(c, info)
		},
	}
}
