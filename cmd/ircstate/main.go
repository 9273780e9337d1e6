// Command ircstate tracks the channels and users of irc networks, either live
// or from captured traffic, and serves the result over HTTP.
package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/ircstate/config"
	"github.com/aarondl/ircstate/data"
)

type options struct {
	configFile string
	envFiles   []string
	logLevel   string
	storeFile  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "ircstate",
		Short:         "Track irc channel and user state",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(opts.envFiles)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "ircstate.toml",
		"configuration file, toml or yaml")
	flags.StringSliceVar(&opts.envFiles, "env", nil,
		"env files to load, .env is loaded when it exists")
	flags.StringVar(&opts.logLevel, "loglevel", "",
		"log level (debug, info, warn, error, crit)")
	flags.StringVar(&opts.storeFile, "store", "",
		"snapshot database, overrides the configuration")

	root.AddCommand(newReplayCmd(opts), newConnectCmd(opts),
		newSnapshotsCmd(opts))
	return root
}

// loadEnv loads the given env files. Without any the default .env is loaded
// if it is there.
func loadEnv(files []string) error {
	if len(files) > 0 {
		return pkgerrors.Wrap(godotenv.Load(files...), "load env")
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return pkgerrors.Wrap(err, "load env")
	}
	return nil
}

// loadConfig reads the configuration and applies the environment. When
// required is false a missing file gives an empty configuration.
func (o *options) loadConfig(required bool) (*config.Config, error) {
	cfg, err := config.FromFile(o.configFile)
	if err != nil {
		if required || !errors.Is(pkgerrors.Cause(err), fs.ErrNotExist) {
			return nil, err
		}
		cfg = config.NewConfig()
	}

	cfg.ApplyEnv(os.Getenv)
	if len(o.logLevel) > 0 {
		cfg.LogLevel = o.logLevel
	}
	if len(o.storeFile) > 0 {
		cfg.StoreFile = o.storeFile
	}
	return cfg, nil
}

// newLogger writes logfmt to stderr at the given level and above.
func newLogger(level string) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "log level %q", level)
	}

	logger := log15.New()
	logger.SetHandler(log15.LvlFilterHandler(lvl,
		log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
	return logger, nil
}

func openStore(filename string) (*data.Store, error) {
	return data.NewStore(data.FileStoreProvider(filename))
}
