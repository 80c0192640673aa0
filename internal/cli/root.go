// Package cli defines the loadmatch cobra commands. Commands parse flags and
// delegate to the adapters built by the wire package.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/loadmatch/internal/version"
	"github.com/example/loadmatch/internal/wire"
)

var (
	// Global flags
	configPath string
	verbose    bool
	asJSON     bool
)

// RootCmd returns the loadmatch root command with every subcommand attached.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "loadmatch",
		Short:   "Reconcile carrier freight imports into shipments",
		Version: version.String(),
		Long: `loadmatch ingests carrier and vendor freight-import records and reconciles
each one against drivers, route legs and existing shipments, advancing every
shipment through its four stages: at terminal, in transit, delivered pending
and delivered confirmed.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.Configure(wire.Options{ConfigPath: configPath, Verbose: verbose})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = wire.Close()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.loadmatch/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")

	root.AddCommand(InitCmd())
	root.AddCommand(DoctorCmd())
	root.AddCommand(QueueCmd())
	root.AddCommand(ShowCmd())
	root.AddCommand(ProcessCmd())
	root.AddCommand(BatchCmd())
	root.AddCommand(ImportCmd())
	root.AddCommand(WatchCmd())
	return root
}

// parseIDs reads positional import ids. Commas are accepted as separators.
func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid import id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
