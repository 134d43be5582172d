package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/trampoline/lncfg"
	"github.com/lightningnetwork/trampoline/routing"
	"github.com/lightningnetwork/trampoline/trampoline"
	"github.com/urfave/cli"
)

var (
	// Commit stores the current commit hash of this build. This should be
	// set using -ldflags during compilation.
	Commit string

	defaultNetwork    = "mainnet"
	defaultDebugLevel = "info"
	defaultConfigFile = filepath.Join(
		btcutil.AppDataDir("trampcli", false), "trampcli.conf",
	)
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[trampcli] %v\n", err)
	os.Exit(1)
}

func main() {
	app := cli.NewApp()
	app.Name = "trampcli"
	app.Version = fmt.Sprintf("%s commit=%s", "0.1.0", Commit)
	app.Usage = "build trampoline routes and onions for lightning invoices"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "network, n",
			Value: defaultNetwork,
			Usage: "the network to use: mainnet, testnet, " +
				"signet, regtest or simnet",
		},
		cli.StringFlag{
			Name:  "configfile",
			Value: defaultConfigFile,
			Usage: "path to a config file with a [Trampoline] " +
				"section",
		},
		cli.StringFlag{
			Name:  "debuglevel",
			Value: defaultDebugLevel,
			Usage: "logging level: trace, debug, info, warn, " +
				"error, critical or off",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		return setupLogging(ctx.GlobalString("debuglevel"))
	}
	app.Commands = []cli.Command{
		listTrampolinesCommand,
		buildRouteCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

// setupLogging directs the routing logs to stderr at the given level.
func setupLogging(level string) error {
	logLevel, ok := btclog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("invalid debug level %q", level)
	}

	backend := btclog.NewBackend(os.Stderr)
	logger := backend.Logger(routing.Subsystem)
	logger.SetLevel(logLevel)
	routing.UseLogger(logger)

	return nil
}

// getNetParams returns the chain params of the network selected on the
// command line.
func getNetParams(ctx *cli.Context) (*chaincfg.Params, error) {
	switch network := ctx.GlobalString("network"); network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil

	case "testnet":
		return &chaincfg.TestNet3Params, nil

	case "signet":
		return &chaincfg.SigNetParams, nil

	case "regtest":
		return &chaincfg.RegressionNetParams, nil

	case "simnet":
		return &chaincfg.SimNetParams, nil

	default:
		return nil, fmt.Errorf("unknown network: %v", network)
	}
}

// loadConfig reads the config file. The defaults are used if the default
// config file doesn't exist.
func loadConfig(ctx *cli.Context) (*lncfg.Trampoline, error) {
	path := ctx.GlobalString("configfile")
	if !ctx.GlobalIsSet("configfile") && !fileExists(path) {
		return lncfg.DefaultTrampoline(), nil
	}

	return lncfg.LoadTrampolineConfig(path)
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}

	return true
}

// getRegistry returns the trampolines of the selected network.
func getRegistry(ctx *cli.Context,
	cfg *lncfg.Trampoline) (*trampoline.Registry, error) {

	params, err := getNetParams(ctx)
	if err != nil {
		return nil, err
	}

	registryCfg, err := cfg.RegistryConfig(params, nil)
	if err != nil {
		return nil, err
	}

	return trampoline.NewRegistry(registryCfg), nil
}

func printJSON(resp interface{}) {
	b, err := json.Marshal(resp)
	if err != nil {
		fatal(err)
	}

	var out bytes.Buffer
	_ = json.Indent(&out, b, "", "\t")
	out.WriteString("\n")
	_, _ = out.WriteTo(os.Stdout)
}
