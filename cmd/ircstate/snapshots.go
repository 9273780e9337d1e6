package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aarondl/ircstate/data"
)

func newSnapshotsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List the networks that have a stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.usingStore(func(store *data.Store) error {
				networks, err := store.Networks()
				if err != nil {
					return err
				}
				for _, n := range networks {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show NETWORK",
		Short: "Print a stored snapshot as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.usingStore(func(store *data.Store) error {
				snap, err := store.Load(args[0])
				if err != nil {
					return err
				}

				// Restoring checks that the snapshot is consistent.
				if _, err := snap.Restore(); err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm NETWORK...",
		Short: "Delete stored snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.usingStore(func(store *data.Store) error {
				for _, n := range args {
					if err := store.Delete(n); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.AddCommand(show, rm)
	return cmd
}

func (o *options) usingStore(fn func(*data.Store) error) error {
	cfg, err := o.loadConfig(false)
	if err != nil {
		return err
	}

	store, err := openStore(cfg.Store())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
