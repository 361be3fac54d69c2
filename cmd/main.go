package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tradejournal/cmd/exporter"
	"tradejournal/cmd/syncbalances"
	"tradejournal/src/auth"
	"tradejournal/src/executors"
	"tradejournal/src/server"
)

var Version string

func main() {
	SetupLogger()

	app := cli.NewApp()
	app.Name = "journal"
	app.Usage = "Trading journal statistics service"
	app.Version = Version

	app.Commands = []cli.Command{
		serverCMD,
		syncBalancesCMD,
		exportCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serverCMD = cli.Command{
		Name:        "server",
		Usage:       "run the journal HTTP API",
		Action:      serverAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Serve stats, equity, calendar and trade routes`,
	}
	syncBalancesCMD = cli.Command{
		Name:        "sync-balances",
		Usage:       "recompute current_balance for every account",
		Action:      syncBalancesAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the balance syncer over all accounts once`,
	}
	exportCMD = cli.Command{
		Name:      "export",
		Usage:     "export a user's trades or equity curve as CSV",
		Action:    exportAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "user", Usage: "user name to export"},
			cli.StringFlag{Name: "kind", Value: exporter.KindTrades, Usage: "trades | equity"},
			cli.StringFlag{Name: "range", Value: "all", Usage: "time range for trades"},
			cli.StringFlag{Name: "out", Value: "-", Usage: "output file, - for stdout"},
		},
		Description: `Write CSV for one user's active account`,
	}
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func serverAction(_ *cli.Context) error {
	logrus.Info("Starting journal server")

	config := server.GetConfig()
	app, err := server.NewApp(context.Background(), config.StoreBackend)
	if err != nil {
		logrus.WithError(err).Error("Starting server")
		return err
	}
	defer app.Close()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	if period := executors.GetConfig().LoopPeriod; period > 0 {
		go func() {
			if err := executors.StartLoop(loopCtx, app.Journal, period); err != nil {
				logrus.WithError(err).Error("Balance sync loop")
			}
		}()
	}

	router := server.NewRouter(app, auth.GetConfig().UserHeader)
	server.StartServer(config.Port, router, config.ShutdownTimeout)
	return nil
}

func syncBalancesAction(_ *cli.Context) error {
	logrus.Info("Starting sync-balances CMD")

	ctx, cancel := signalContext()
	defer cancel()

	app, err := server.NewApp(ctx, server.GetConfig().StoreBackend)
	if err != nil {
		return err
	}
	defer app.Close()

	cmd := &syncbalances.SyncBalances{
		Log:     logrus.WithField("cmd", "sync-balances"),
		Journal: app.Journal,
	}
	if err := cmd.Start(ctx); err != nil {
		logrus.WithError(err).Error("Running sync-balances")
		return err
	}
	return nil
}

func exportAction(c *cli.Context) error {
	if c.String("user") == "" {
		return cli.NewExitError("--user is required", 2)
	}

	ctx, cancel := signalContext()
	defer cancel()

	app, err := server.NewApp(ctx, server.GetConfig().StoreBackend)
	if err != nil {
		return err
	}
	defer app.Close()

	cmd := &exporter.Exporter{
		Log:      logrus.WithField("cmd", "export"),
		Users:    app.Users,
		Journal:  app.Journal,
		UserName: c.String("user"),
		Kind:     c.String("kind"),
		Range:    c.String("range"),
		Out:      c.String("out"),
	}
	return cmd.Start(ctx)
}
