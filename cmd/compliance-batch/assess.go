package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
	"github.com/raaihank/compliance-sentinel/internal/batch"
	"github.com/raaihank/compliance-sentinel/internal/config"
	"github.com/raaihank/compliance-sentinel/internal/jurisdiction"
	"github.com/raaihank/compliance-sentinel/internal/logger"
	"github.com/raaihank/compliance-sentinel/internal/regulation"
	"github.com/raaihank/compliance-sentinel/internal/report"
	"github.com/raaihank/compliance-sentinel/internal/store"
)

var (
	assessDryRun       bool
	assessWorkers      int
	assessBatchSize    int
	assessOutput       string
	assessRegulations  []string
	assessSkipValidate bool
)

var assessCmd = &cobra.Command{
	Use:   "assess <dataset>",
	Short: "Assess every project in a dataset file",
	Long: `Assess reads project rows from a dataset, runs the compliance assessment
for each project, and generates one report per project.

The format is chosen from the file extension: .parquet, .json/.jsonl/.ndjson,
anything else is read as CSV. Reports are stored in PostgreSQL when the
database is enabled in the configuration, unless --dry-run is given.

Examples:
  # Assess a CSV export without storing reports
  compliance-batch assess projects.csv --dry-run

  # Assess a Parquet dataset with 8 workers and keep the per-project results
  compliance-batch assess projects.parquet --workers 8 --output results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().BoolVar(&assessDryRun, "dry-run", false, "Assess without storing reports")
	assessCmd.Flags().IntVarP(&assessWorkers, "workers", "w", 0, "Concurrent assessments (defaults to batch.worker_count)")
	assessCmd.Flags().IntVarP(&assessBatchSize, "batch-size", "b", 0, "Records read per batch (defaults to batch.batch_size)")
	assessCmd.Flags().StringVarP(&assessOutput, "output", "o", "", "Write the processing result as JSON to this file (- for stdout)")
	assessCmd.Flags().StringSliceVar(&assessRegulations, "default-regulations", nil, "Regulations for rows that name none and match no location")
	assessCmd.Flags().BoolVar(&assessSkipValidate, "skip-validation", false, "Assess rows even without a project id or regulations")
}

func runAssess(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var saver batch.ReportSaver
	if !assessDryRun {
		if !cfg.Database.Enabled {
			log.Warn("Database disabled in configuration, reports will not be stored")
		} else {
			reportStore, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer reportStore.Close()
			saver = reportStore
		}
	}

	pipeline := batch.NewPipeline(
		assessment.NewAssessor(regulation.Default(), assessment.Options{
			ResponsibleParty: cfg.Compliance.ResponsibleParty,
			StaggerWeeks:     cfg.Compliance.StaggerWeeks,
		}, log.WithComponent("assessment").Logger),
		report.NewAggregator(cfg.Compliance.MaxPrioritizedActions),
		jurisdiction.NewDetector(),
		saver,
		batchConfig(cfg),
		log.WithComponent("batch").Logger,
	)

	result, err := pipeline.ProcessFile(ctx, args[0])
	if result != nil {
		printSummary(cmd, result)
		if werr := writeResult(cmd, result); werr != nil {
			log.Error("Failed to write result", zap.Error(werr))
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("assessment cancelled")
		}
		return err
	}
	if result.ProcessedFailed > 0 {
		return fmt.Errorf("%d projects failed", result.ProcessedFailed)
	}
	return nil
}

func batchConfig(cfg *config.Config) batch.Config {
	bc := batch.Config{
		BatchSize:          cfg.Batch.BatchSize,
		WorkerCount:        cfg.Batch.WorkerCount,
		ValidateData:       cfg.Batch.ValidateData && !assessSkipValidate,
		ProgressReport:     cfg.Batch.ProgressReport,
		DefaultRegulations: cfg.Compliance.DefaultRegulations,
		KeepOutcomes:       assessOutput != "",
	}
	if assessWorkers > 0 {
		bc.WorkerCount = assessWorkers
	}
	if assessBatchSize > 0 {
		bc.BatchSize = assessBatchSize
	}
	if len(assessRegulations) > 0 {
		bc.DefaultRegulations = assessRegulations
	}
	return bc
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reportStore, err := store.NewStore(connectCtx, &store.Config{
		DatabaseURL:     cfg.Database.DatabaseURL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}, log.WithComponent("store").Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect report store: %w", err)
	}
	if err := reportStore.Migrate(connectCtx); err != nil {
		reportStore.Close()
		return nil, fmt.Errorf("failed to migrate report store: %w", err)
	}
	return reportStore, nil
}

func printSummary(cmd *cobra.Command, result *batch.ProcessingResult) {
	w := cmd.ErrOrStderr()
	fmt.Fprintln(w, "Batch assessment summary")
	fmt.Fprintf(w, "  Records:        %d\n", result.TotalRecords)
	fmt.Fprintf(w, "  Assessed:       %d\n", result.ProcessedOK)
	fmt.Fprintf(w, "  Failed:         %d\n", result.ProcessedFailed)
	fmt.Fprintf(w, "  Invalid:        %d\n", result.Invalid)
	fmt.Fprintf(w, "  Stored:         %d\n", result.Persisted)
	fmt.Fprintf(w, "  Non-compliant:  %d\n", result.NonCompliant)
	fmt.Fprintf(w, "  Average score:  %.1f\n", result.AverageScore)
	fmt.Fprintf(w, "  Duration:       %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}

func writeResult(cmd *cobra.Command, result *batch.ProcessingResult) error {
	switch assessOutput {
	case "":
		return nil
	case "-":
		return printJSON(cmd.OutOrStdout(), result)
	}

	f, err := os.Create(assessOutput)
	if err != nil {
		return err
	}
	if err := printJSON(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
