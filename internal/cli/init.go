package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/loadmatch/internal/config"
	"github.com/example/loadmatch/internal/db"
	"github.com/example/loadmatch/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the loadmatch config and database",
		Long: `Write a default config file if none exists and create the database schema.
With --seed, load a small demo directory of carriers, drivers, trucks,
pull points, pads and route legs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				if err := config.DefaultConfig().Save(path); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s Config written to %s\n", okMark, path)
			} else {
				fmt.Fprintf(out, "%s Config found at %s\n", okMark, path)
			}

			c, err := wire.Get()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Database ready\n", okMark)

			if seed {
				if err := db.SeedDemo(c.DB); err != nil {
					return fmt.Errorf("failed to seed demo data: %w", err)
				}
				fmt.Fprintf(out, "%s Demo reference data loaded\n", okMark)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  loadmatch import drop.json")
			fmt.Fprintln(out, "  loadmatch queue")
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "load demo reference data")
	return cmd
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}
