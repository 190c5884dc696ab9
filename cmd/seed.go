package cmd

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/bookrfm/internal/factories"
	"github.com/chrisdamba/bookrfm/internal/logging"
	"github.com/chrisdamba/bookrfm/internal/repositories"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic dataset into the configured source",
	Long: `Generate books, customers, orders and marketing spend and write them to the
configured source store. Customers are drawn from frequent, regular, occasional and
dormant purchase profiles so every segment is represented. The same seed always
produces the same dataset.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().Int64("seed", 42, "random seed")
	seedCmd.Flags().Int("books", 200, "number of books")
	seedCmd.Flags().Int("customers", 500, "number of customers")
	seedCmd.Flags().Int("marketing-rows", 800, "number of marketing spend rows")
	seedCmd.Flags().Bool("create-schema", false, "create the tables before loading")
	seedCmd.Flags().Bool("truncate", false, "delete existing rows before loading")
	seedCmd.Flags().String("id-style", "sequential", "identifier style (sequential, cuid)")
	bindFlags(seedCmd, map[string]string{
		"seed.seed":           "seed",
		"seed.books":          "books",
		"seed.customers":      "customers",
		"seed.marketing_rows": "marketing-rows",
		"seed.create_schema":  "create-schema",
		"seed.truncate":       "truncate",
		"seed.id_style":       "id-style",
	}, false)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	gen, err := factories.NewGenerator(cfg.Seed)
	if err != nil {
		return err
	}
	snap := gen.Generate()

	store, err := openStore(ctx, cfg, cfg.Seed.CreateSchema)
	if err != nil {
		return err
	}
	defer store.Close()

	total := len(snap.Books) + len(snap.Customers) + len(snap.Orders) + len(snap.MarketingSpend)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("seeding "+cfg.Source.Kind),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	err = repositories.SaveSnapshot(ctx, store, snap, cfg.Seed.BatchSize, cfg.Seed.TruncateTables, func(n int) {
		_ = bar.Add(n)
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	logging.Info("dataset seeded",
		zap.String("source", cfg.Source.Kind),
		zap.Int64("seed", cfg.Seed.Seed),
		zap.Int("books", len(snap.Books)),
		zap.Int("customers", len(snap.Customers)),
		zap.Int("orders", len(snap.Orders)),
		zap.Int("marketing_spend", len(snap.MarketingSpend)),
	)
	return nil
}
