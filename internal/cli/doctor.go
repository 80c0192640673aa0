package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/wire"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
)

// DoctorCmd returns the doctor command
func DoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Show the configuration and schema capability snapshot",
		Long: `Print the effective configuration and which optional columns the database
provides. Missing optional columns are skipped by every write; this command
shows which ones a deployment lacks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Get()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			cfg := c.Config
			fmt.Fprintf(out, "\nConfig:   %s\n", path)
			fmt.Fprintf(out, "Database: %s\n", orDefault(cfg.Database.Path, "~/.loadmatch/loadmatch.db"))
			fmt.Fprintf(out, "Workers:  %d, batch cap %d, queue %d/%d\n",
				cfg.Processing.Workers, cfg.Processing.BatchCap, cfg.Queue.DefaultLimit, cfg.Queue.MaxLimit)
			fmt.Fprintf(out, "Inbox:    %s (%s)\n\n", orDefault(cfg.Inbox.Dir, "not set"), cfg.Inbox.Pattern)

			printCapabilities(out, c.Capabilities)
			return nil
		},
	}
}

func printCapabilities(out io.Writer, caps capability.Set) {
	for _, table := range []string{capability.TableShipments, capability.TableShipmentDetails, capability.TableImportRecords} {
		mark := okMark
		if !caps.HasTable(table) {
			mark = warnMark
		}
		fmt.Fprintf(out, "%s %s\n", mark, table)
		for _, f := range capability.All {
			if f.Table != table {
				continue
			}
			if caps.Has(f) {
				fmt.Fprintf(out, "    %s %s\n", okMark, f.Column)
			} else {
				fmt.Fprintf(out, "    %s %s (missing)\n", warnMark, f.Column)
			}
		}
	}
	if missing := caps.Missing(); len(missing) > 0 {
		fmt.Fprintf(out, "\n%d optional column(s) missing\n", len(missing))
	} else {
		fmt.Fprintln(out, "\nAll optional columns present")
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
