package cli

import (
	"context"
	"os"

	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the walletsync CLI application.
//
// It registers all available commands, including:
//
//   - `start`: Observes wallets until interrupted.
//   - `pending`: Prints the cached pending transactions of a wallet.
//   - `history`: Prints the cached executed or cancelled transactions of a wallet.
//   - `info`: Prints the cached on-chain state of a wallet.
//
// The read commands only touch the cache and never start the service.
func Run(ctx context.Context, svc walletsync.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletsync",
		Description:           "Keeps multi-owner wallets in sync with the chain and notifies about their activity.",
		Usage:                 "walletsync [command] [flags]",
		Commands: []*cli.Command{
			startCommand(svc),
			pendingCommand(svc),
			historyCommand(svc),
			infoCommand(svc),
		},
	}

	return app.Run(ctx, os.Args)
}
