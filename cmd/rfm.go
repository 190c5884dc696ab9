package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/bookrfm/internal/logging"
	"github.com/chrisdamba/bookrfm/internal/models"
	"github.com/chrisdamba/bookrfm/internal/output"
	"github.com/chrisdamba/bookrfm/internal/rfm"
)

var rfmCmd = &cobra.Command{
	Use:   "rfm",
	Short: "Score and segment customers",
	Long: `Load a snapshot of the four input tables, rank every customer with at least one
order into quintiles on recency, frequency and monetary value, and classify the summed
ranks into Champions, Loyal, Potential or At Risk.

The scores are written to the rfm_scores topic and a per-segment count to
segment_summary. A summary table is printed when the output is not the console.`,
	Args: cobra.NoArgs,
	RunE: runRFM,
}

func init() {
	rfmCmd.Flags().Int("workers", 1, "number of partitions aggregated in parallel")
	rfmCmd.Flags().String("orientation", string(models.OrientationNTile), "score orientation: ntile (1 = best) or score (5 = best)")
	bindFlags(rfmCmd, map[string]string{
		"rfm.workers":     "workers",
		"rfm.orientation": "orientation",
	}, false)
}

func runRFM(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	runID := output.NewRunID()
	log := logging.With(zap.String("run_id", runID))

	snap, err := loadSnapshot(ctx, cfg)
	if err != nil {
		return err
	}

	scores, err := rfm.NewEngine(rfm.OptionsFromConfig(cfg)).Compute(snap)
	if err != nil {
		return err
	}
	summary := rfm.Summarize(scores)

	dest, err := output.New(ctx, cfg, runID)
	if err != nil {
		return err
	}
	if err := output.Publish(dest, models.TopicRfmScores, scores); err != nil {
		dest.Close()
		return err
	}
	if err := output.Publish(dest, models.TopicSegmentSummary, summary); err != nil {
		dest.Close()
		return err
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}

	log.Info("rfm run complete",
		zap.Int("customers_scored", len(scores)),
		zap.String("destination", cfg.Output.Destination),
	)
	if cfg.Output.Destination != models.OutputConsole {
		return printSummary(cmd.OutOrStdout(), summary)
	}
	return nil
}

func printSummary(w io.Writer, summary []models.SegmentSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEGMENT\tCUSTOMERS\tREVENUE")
	for _, s := range summary {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Segment, s.Customers, s.Revenue.StringFixed(2))
	}
	return tw.Flush()
}
