// Package main provides a CLI for inspecting the model registry.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-projector/internal/config"
	"github.com/yourusername/prop-projector/internal/database"
	"github.com/yourusername/prop-projector/internal/repository"
)

var (
	configFile string
	logger     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(historyCmd)
}

var rootCmd = &cobra.Command{
	Use:   "registry-status",
	Short: "Inspect the model registry",
	Long:  `Displays the active model pointer per market and recent training history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return displayActive(cmd.Context())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [market-code]",
	Short: "Show training history for one market",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return displayHistory(cmd.Context(), args[0])
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setupDependencies() error {
	logger = logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	// A read-only status tool should still work without a config file,
	// from defaults plus environment variables.
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	db, err = database.NewDB(context.Background(), &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	return nil
}

func displayActive(ctx context.Context) error {
	markets, err := repos.Market.List(ctx)
	if err != nil {
		return err
	}
	codeByID := make(map[int]string, len(markets))
	for _, m := range markets {
		codeByID[m.ID] = m.Code
	}

	active, err := repos.Registry.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		fmt.Println("No active models registered.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MARKET\tMODEL\tLOOKBACK\tARTIFACT\tUPDATED")
	for _, a := range active {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			codeByID[a.MarketID], a.ModelName, a.Lookback, a.ArtifactPath,
			a.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func displayHistory(ctx context.Context, marketCode string) error {
	market, err := repos.Market.GetByCode(ctx, marketCode)
	if err != nil {
		return err
	}

	history, err := repos.Registry.History(ctx, market.ID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Printf("No training history for market %s.\n", marketCode)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tLOOKBACK\tTRAIN\tTEST\tMAE\tRMSE\tR2\tCREATED")
	for _, h := range history {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%s\n",
			h.ModelName, h.Lookback, h.TrainRows, h.TestRows,
			h.MAE, h.RMSE, h.R2, h.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
