package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/loadmatch/internal/core/driver"
	"github.com/example/loadmatch/internal/ports/primary"
	"github.com/example/loadmatch/internal/wire"
)

// QueueCmd returns the queue command
func QueueCmd() *cobra.Command {
	var req primary.QueueRequest

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List import records with their match evaluation",
		Long: `Evaluate the newest import records without writing anything.

Examples:
  loadmatch queue                        # unprocessed records
  loadmatch queue --only all --match RED # every record that can never process
  loadmatch queue -q 2512 --limit 20     # free text over parsed fields and payload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Match = strings.ToUpper(req.Match)
			adapter, err := wire.InboundAdapter(cmd.OutOrStdout(), asJSON)
			if err != nil {
				return err
			}
			return adapter.Queue(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVar(&req.Only, "only", primary.OnlyUnprocessed, "unprocessed, processed or all")
	cmd.Flags().StringVarP(&req.Query, "query", "q", "", "free-text filter")
	cmd.Flags().StringVar(&req.Match, "match", "", "confidence filter: GREEN, YELLOW or RED")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "maximum records to list (default from config)")
	return cmd
}

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show [import-id]",
		Aliases: []string{"evaluate"},
		Short:   "Show the match evaluation of one import record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			adapter, err := wire.InboundAdapter(cmd.OutOrStdout(), asJSON)
			if err != nil {
				return err
			}
			return adapter.Show(cmd.Context(), ids[0])
		},
	}
}

// ProcessCmd returns the process command
func ProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process [import-id]",
		Short: "Apply the stage declared by one import record",
		Long: `Apply one import record strictly: the record's stage must be exactly one
step past the shipment's current stage, or stage 1 for a new shipment.
Use batch to replay several stages of one shipment in order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			adapter, err := wire.InboundAdapter(cmd.OutOrStdout(), asJSON)
			if err != nil {
				return err
			}
			return adapter.Process(cmd.Context(), ids[0])
		},
	}
}

// BatchCmd returns the batch command
func BatchCmd() *cobra.Command {
	var ready bool

	cmd := &cobra.Command{
		Use:   "batch [import-id...]",
		Short: "Replay many import records grouped by shipment in stage order",
		Long: `Group import records by route leg and shipment number, then apply each
group's stages in rank order starting from the group's current stage.

Examples:
  loadmatch batch 12 13 14
  loadmatch batch 12,13,14
  loadmatch batch --ready    # every unprocessed GREEN/YELLOW record that can process`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if ready {
				more, err := readyIDs(cmd)
				if err != nil {
					return err
				}
				ids = append(ids, more...)
			}
			if len(ids) == 0 && !ready {
				return fmt.Errorf("pass import ids or --ready")
			}

			adapter, err := wire.InboundAdapter(cmd.OutOrStdout(), asJSON)
			if err != nil {
				return err
			}
			return adapter.Batch(cmd.Context(), ids)
		},
	}

	cmd.Flags().BoolVar(&ready, "ready", false, "include every unprocessed record that can process")
	return cmd
}

// readyIDs collects the processable records of the unprocessed queue.
func readyIDs(cmd *cobra.Command) ([]int64, error) {
	c, err := wire.Get()
	if err != nil {
		return nil, err
	}
	resp, err := c.Inbound.ListQueue(cmd.Context(), primary.QueueRequest{
		Only:  primary.OnlyUnprocessed,
		Limit: c.Config.Queue.MaxLimit,
	})
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, item := range resp.Items {
		if item.Readiness.CanProcess && item.Confidence != driver.Red {
			ids = append(ids, item.ImportID)
		}
	}
	return ids, nil
}
