package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vault-tools/connect-db/internal/connector"
	"github.com/vault-tools/connect-db/internal/logging"
)

// Exit code for launcher-side failures; anything the client itself
// returns is passed through untouched.
const exitUsage = 2

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var (
		configPath string
		debug      bool
		printURL   bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&printURL, "print-url", false, "Log the resolved connection url (password masked)")
	flag.Usage = usage
	flag.Parse()

	if debug {
		logging.Configure(logging.WithLevel(slog.LevelDebug))
	}

	log := logging.New("setup")

	if flag.NArg() < 1 || flag.Arg(0) == "" {
		fmt.Fprintln(os.Stderr, "missing required argument: <database_name>")
		flag.Usage()
		return exitUsage
	}
	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "unexpected extra arguments: %v\n", flag.Args()[1:])
		flag.Usage()
		return exitUsage
	}
	dbName := flag.Arg(0)
	ctx = logging.PopulateContext(ctx, slog.String("database", dbName))

	launcher, err := createLauncher(configPath, debug, printURL)
	if err != nil {
		log.ErrorContext(ctx, "failed to create launcher", "error", err)
		return exitUsage
	}

	code, err := launcher.Run(ctx, dbName)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect", "error", err)
		return exitUsage
	}
	return code
}

func createLauncher(configPath string, debug, printURL bool) (*connector.Launcher, error) {
	config, err := connector.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if config.Debug && !debug {
		logging.Configure(logging.WithLevel(slog.LevelDebug))
	}

	var opts []connector.Option
	if printURL {
		opts = append(opts, connector.WithPrintURL())
	}

	return connector.NewLauncher(config, opts...), nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: %s [flags] <database_name>\n\nConnect to a database whose secrets live in %s.\n\nFlags:\n",
		os.Args[0], connector.DefaultSecretsDir)
	flag.PrintDefaults()
}
