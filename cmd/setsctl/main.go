package main

import (
	"alcyxob/sets-tracker/internal/client"
	"alcyxob/sets-tracker/internal/config"
	"alcyxob/sets-tracker/internal/localstore"
	"alcyxob/sets-tracker/internal/setsync"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

const usage = `Usage: setsctl [global flags] <command> [flags]

Commands:
  add        log a set (queued locally, then pushed)
  edit ID    change fields of a set
  rm ID      delete a set
  ls         list sets (--day YYYY-MM-DD)
  sync       push pending changes and pull (--watch keeps running)
  export     print the export document (--day, --upload)
  stats      trend series (--from, --to, --type)
  workouts   list the workout catalog
  check      diagnose the server's set store
  device     print this device's id

Global flags:
`

// app bundles what the local commands need.
type app struct {
	store  *localstore.Store
	api    *client.Client
	engine *setsync.Engine
	cfg    config.ClientConfig
	out    io.Writer

	// offline is set once a sync in this invocation failed.
	offline bool
}

func openApp(ctx context.Context, cfg config.ClientConfig, out io.Writer) (*app, error) {
	store, err := localstore.Open(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	deviceID, err := store.DeviceID(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	api := client.New(cfg.BaseURL, deviceID, cfg.RequestTimeout)
	engine := setsync.NewEngine(store, api, setsync.WithRetryInterval(cfg.RetryInterval))
	return &app{store: store, api: api, engine: engine, cfg: cfg, out: out}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Printf("ERROR: Failed to close local store: %v", err)
	}
}

func main() {
	global := pflag.NewFlagSet("setsctl", pflag.ContinueOnError)
	global.SetInterspersed(false)
	configDir := global.String("config", ".", "directory holding config.yaml")
	server := global.String("server", "", "API base URL (overrides client.base_url)")
	dataPath := global.String("data", "", "local database file (overrides client.data_path)")
	global.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		global.PrintDefaults()
	}
	if err := global.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if global.Changed("server") {
		cfg.Client.BaseURL = *server
	}
	if global.Changed("data") {
		cfg.Client.DataPath = *dataPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.Client, os.Stdout, global.Arg(0), global.Args()[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "setsctl %s: %v\n", global.Arg(0), err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.ClientConfig, out io.Writer, command string, args []string) error {
	if command == "help" {
		fmt.Fprint(out, usage)
		return nil
	}
	cmd, ok := commands[command]
	if !ok {
		return fmt.Errorf("unknown command %q (see setsctl help)", command)
	}

	a, err := openApp(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer a.Close()
	return cmd(ctx, a, args)
}
