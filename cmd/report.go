package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/bookrfm/internal/models"
	"github.com/chrisdamba/bookrfm/internal/output"
	"github.com/chrisdamba/bookrfm/internal/reports"
)

const (
	reportBestSellers = "bestsellers"
	reportInventory   = "inventory"
	reportROI         = "roi"
	reportGenres      = "genres"
)

var reportCmd = &cobra.Command{
	Use:   "report [bestsellers|inventory|roi|genres]",
	Short: "Run a merchandising or marketing report",
	Long: `Run one of the supplementary reports over the same snapshot the rfm command reads:

  bestsellers  top books by units sold, then revenue
  inventory    books whose stock is below the low-stock threshold
  roi          return on marketing spend per channel
  genres       revenue and units per genre with share of total revenue`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{reportBestSellers, reportInventory, reportROI, reportGenres},
	RunE:      runReport,
}

func init() {
	reportCmd.Flags().Int("top-n", 10, "number of best sellers to report")
	reportCmd.Flags().Int("threshold", 10, "stock level below which a book is reported")
	bindFlags(reportCmd, map[string]string{
		"reports.top_n":               "top-n",
		"reports.low_stock_threshold": "threshold",
	}, false)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	snap, err := loadSnapshot(ctx, cfg)
	if err != nil {
		return err
	}

	dest, err := output.New(ctx, cfg, output.NewRunID())
	if err != nil {
		return err
	}

	if err := publishReport(dest, args[0], snap); err != nil {
		dest.Close()
		return err
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}

func publishReport(dest output.Destination, name string, snap *models.Snapshot) error {
	switch name {
	case reportBestSellers:
		rows, err := reports.BestSellers(snap, cfg.Reports.TopN)
		if err != nil {
			return err
		}
		return output.Publish(dest, models.TopicBestSellers, rows)
	case reportInventory:
		rows, err := reports.InventoryAlerts(snap, cfg.Reports.LowStockThreshold)
		if err != nil {
			return err
		}
		return output.Publish(dest, models.TopicInventory, rows)
	case reportROI:
		rows, err := reports.MarketingROI(snap)
		if err != nil {
			return err
		}
		return output.Publish(dest, models.TopicMarketingROI, rows)
	case reportGenres:
		rows, err := reports.GenrePerformance(snap)
		if err != nil {
			return err
		}
		return output.Publish(dest, models.TopicGenres, rows)
	default:
		return fmt.Errorf("unknown report: %s", name)
	}
}
