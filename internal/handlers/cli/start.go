package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/urfave/cli/v3"
)

// startCommand returns a CLI command that starts the sync service and
// observes the given wallets.
//
// Usage example:
//
//	walletsync start --wallet 0xABC... --wallet 0xDEF...
//
// The process runs until it receives SIGINT or SIGTERM.
func startCommand(svc walletsync.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the sync service and observes the given wallets.",
		Usage:       "Observes wallets through realtime subscriptions or polling. Terminates gracefully on Ctrl+C or termination signals.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "wallet",
				Usage:    "Wallet address to observe, repeatable",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Close()

			var errs []error
			for _, wallet := range c.StringSlice("wallet") {
				if err := svc.ActivateWallet(ctx, wallet); err != nil {
					errs = append(errs, err)
				}
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}

			select {
			case <-quit:
			case <-ctx.Done():
			}
			return nil
		},
	}
}
