package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/ircstate/data"
	"github.com/aarondl/ircstate/dispatch"
	"github.com/aarondl/ircstate/irc"
	"github.com/aarondl/ircstate/transport"
)

func newReplayCmd(opts *options) *cobra.Command {
	var (
		network string
		save    bool
		quiet   bool
		queries bool
		caps    []string
	)

	cmd := &cobra.Command{
		Use:   "replay FILE...",
		Short: "Build the state from captured protocol lines",
		Long: "Replay reads raw irc lines, one per line as received from the " +
			"server, and prints the resulting state as json.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(false)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Level())
			if err != nil {
				return err
			}

			var store *data.Store
			if save {
				if store, err = openStore(cfg.Store()); err != nil {
					return err
				}
				defer store.Close()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			for _, file := range args {
				name := network
				if len(name) == 0 {
					name = strings.TrimSuffix(filepath.Base(file),
						filepath.Ext(file))
				}

				var echo io.Writer
				if queries {
					echo = cmd.ErrOrStderr()
				}

				snap, err := replayFile(file, name, caps, echo, logger)
				if err != nil {
					return err
				}

				if store != nil {
					if err := store.Save(snap); err != nil {
						return err
					}
				}
				if !quiet {
					if err := enc.Encode(snap); err != nil {
						return errors.Wrap(err, "write snapshot")
					}
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&network, "network", "n", "",
		"network name, defaults to the file name")
	flags.BoolVar(&save, "save", false, "save the snapshots to the store")
	flags.BoolVarP(&quiet, "quiet", "q", false, "do not print the snapshots")
	flags.BoolVar(&queries, "queries", false,
		"print the queries the tracker would have sent to stderr")
	flags.StringSliceVar(&caps, "caps", nil,
		"capabilities negotiated before the capture started")
	return cmd
}

func replayFile(file, network string, caps []string, echo io.Writer,
	logger log15.Logger) (*data.Snapshot, error) {

	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "replay")
	}
	defer f.Close()

	recorder := &transport.Recorder{}
	if echo != nil {
		recorder.Echo = &irc.Helper{Writer: echo}
	}
	d, err := dispatch.New(recorder, nil,
		dispatch.WithNetwork(network),
		dispatch.WithLogger(logger),
		dispatch.WithCaps(caps...),
	)
	if err != nil {
		return nil, err
	}

	res, err := transport.Replay(f, d)
	if err != nil {
		return nil, err
	}
	for _, perr := range res.Errors {
		logger.Debug("skipped line", "file", file, "err", perr)
	}

	users, channels := d.Counts()
	logger.Info("replayed", "file", file, "lines", res.Lines,
		"skipped", res.Skipped, "queries", len(recorder.Lines()),
		"users", users, "channels", channels)

	return d.Snapshot(), nil
}
