package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitegen/cmd/sitegen/commands"
	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/version"
)

func main() {
	var cli commands.CLI
	kong.Parse(&cli,
		kong.Name("sitegen"),
		kong.Description("Static site generator"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Run(ctx)
	stop()
	if err != nil {
		ferrors.NewCLIErrorAdapter(cli.Debug, slog.Default()).HandleError(err)
	}
}
