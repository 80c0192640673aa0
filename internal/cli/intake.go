package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/loadmatch/internal/wire"
)

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file...]",
		Short: "Store vendor drop files as import records",
		Long: `Store vendor drops as import records. A JSON object becomes one record and
a JSON array one record per element. Any other content is kept as free text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.IntakeAdapter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return adapter.Import(cmd.Context(), args)
		},
	}
}

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	var scan bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Import vendor drops as they land in a directory",
		Long: `Watch a directory and import every matching file when it is created or
rewritten. The directory defaults to inbox.dir from the config; only files
matching inbox.pattern are imported. Stop with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			inbox, err := wire.Inbox(dir)
			if err != nil {
				return err
			}
			adapter, err := wire.IntakeAdapter(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if scan {
				existing, err := inbox.Scan(ctx)
				if err != nil {
					return err
				}
				for _, path := range existing {
					adapter.HandleDrop(ctx, path)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", inbox.Dir())
			return inbox.Watch(ctx, adapter.HandleDrop)
		},
	}

	cmd.Flags().BoolVar(&scan, "scan", false, "import files already in the directory first")
	return cmd
}
