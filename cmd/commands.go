package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"partnerledger/config"
	"partnerledger/database"
	"partnerledger/logger"
	"partnerledger/repository"
	"partnerledger/service"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

// Commands lists every subcommand of the ledger binary
var Commands = []subcommands.Command{
	&serveCmd{},
	&migrateCmd{},
	&createPartnerCmd{},
}

// loadConfig reads the configuration and configures logging; config.Get panics on invalid input
func loadConfig() (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	cfg = config.Get()
	logger.Setup(cfg.LogLevel, cfg.Environment)
	return cfg, nil
}

type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the ledger over HTTP" }
func (*serveCmd) Usage() string {
	return `ledger serve

  Starts the HTTP adapter. Configuration is read from the environment
  (and a .env file when present).
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (*serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := Run(ctx, cfg); err != nil {
		log.WithError(err).Error("Application error")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply, roll back or inspect schema migrations" }
func (*migrateCmd) Usage() string {
	return `ledger migrate up|down [n]|status

  up      apply every pending migration
  down    roll back n migrations (default 1)
  status  print the current schema version
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprint(os.Stderr, (&migrateCmd{}).Usage())
		return subcommands.ExitUsageError
	}

	if _, err := loadConfig(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var err error
	switch f.Arg(0) {
	case "up":
		err = database.MigrateUp()
	case "down":
		steps := "1"
		if f.NArg() > 1 {
			steps = f.Arg(1)
		}
		err = database.MigrateDown(steps)
	case "status":
		err = database.MigrateStatus()
	default:
		fmt.Fprintf(os.Stderr, "unknown migration command: %s\n", f.Arg(0))
		return subcommands.ExitUsageError
	}

	if err != nil {
		log.WithError(err).Error("Migration error")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type createPartnerCmd struct{}

func (*createPartnerCmd) Name() string     { return "create-partner" }
func (*createPartnerCmd) Synopsis() string { return "register a partner with a zero balance" }
func (*createPartnerCmd) Usage() string {
	return `ledger create-partner

  Inserts a new partner and prints its id.
`
}

func (*createPartnerCmd) SetFlags(*flag.FlagSet) {}

func (*createPartnerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		return subcommands.ExitFailure
	}
	defer db.Close()

	ledgerService := service.NewLedgerService(repository.NewUnitOfWorkFactory(db, nil), cfg, nil)
	partner, err := ledgerService.CreatePartner(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to create partner")
		return subcommands.ExitFailure
	}

	fmt.Println(partner.ID)
	return subcommands.ExitSuccess
}
