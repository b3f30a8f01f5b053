package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"
	_ "time/tzdata"

	"partnerledger/cmd"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}
	flag.Parse()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
