package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/snapdiag/internal/cache"
	"github.com/good-yellow-bee/snapdiag/internal/checks"
	"github.com/good-yellow-bee/snapdiag/internal/config"
	"github.com/good-yellow-bee/snapdiag/internal/facts"
	"github.com/good-yellow-bee/snapdiag/internal/models"
	"github.com/good-yellow-bee/snapdiag/internal/report"
	"github.com/good-yellow-bee/snapdiag/internal/scenario"
	"github.com/good-yellow-bee/snapdiag/internal/search"
	"github.com/good-yellow-bee/snapdiag/internal/snapshot"
)

// Timestamp prefix of the log formats the default definitions target.
const logTimestampExpr = `^([0-9]{4}-[0-9]{2}-[0-9]{2}[ T][0-9]{2}:[0-9]{2}:[0-9]{2})`

var (
	analyzeDefs        string
	analyzeGranularity string
	analyzeAllLogs     bool
	analyzeSince       string
	analyzeWorkers     int
	analyzeScratch     string
	analyzeNoCache     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [snapshot-root]",
	Short: "Analyze a collected snapshot",
	Long: `Run all check and scenario definitions against a snapshot directory
and print the resulting report.

Checks are loaded from <defs>/checks/*.yaml and scenarios from
<defs>/scenarios/*.yaml. Aggregation results are memoized in a
run-scoped scratch directory so that repeated invocations against the
same scratch location reuse prior computation.

Examples:
  # Analyze with date-level tallies
  snapdiag analyze ./sosreport-node1 --defs ./defs

  # Per-minute tallies over all rotated logs
  snapdiag analyze ./sosreport-node1 --defs ./defs --granularity time --all-logs

  # Only look at events since a date
  snapdiag analyze ./sosreport-node1 --defs ./defs --since 2022-02-01`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeDefs, "defs", "defs", "definitions directory (checks/ and scenarios/)")
	analyzeCmd.Flags().StringVar(&analyzeGranularity, "granularity", "date", "tally bucketing (date, time)")
	analyzeCmd.Flags().BoolVar(&analyzeAllLogs, "all-logs", false, "include rotated log files")
	analyzeCmd.Flags().StringVar(&analyzeSince, "since", "", "only consider log lines at or after date (YYYY-MM-DD)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "number of parallel search workers (0 = auto)")
	analyzeCmd.Flags().StringVar(&analyzeScratch, "scratch", "", "run scratch directory (default: generated per run)")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "disable result memoization")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := &config.Run{
		DataRoot:    args[0],
		DefsDir:     analyzeDefs,
		Granularity: models.ParseGranularity(analyzeGranularity),
		AllLogs:     analyzeAllLogs,
		Since:       analyzeSince,
		Workers:     analyzeWorkers,
		ScratchDir:  analyzeScratch,
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	root, err := snapshot.NewRoot(cfg.DataRoot)
	if err != nil {
		return err
	}

	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		PrintVerbose("Received interrupt, stopping...")
		cancel()
	}()

	var since *search.SinceConstraint
	if cfg.Since != "" {
		cutoff, err := time.Parse("2006-01-02", cfg.Since)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		since, err = search.NewSinceConstraint(cutoff, logTimestampExpr)
		if err != nil {
			return err
		}
	}

	var store cache.Store
	if !analyzeNoCache {
		s, err := cache.Open(cfg.ScratchDir)
		if err != nil {
			log.Printf("warning: result cache disabled: %v", err)
		} else {
			store = s
			defer s.Close()
		}
	}

	checkDefs, err := loadCheckDefs(cfg)
	if err != nil {
		return err
	}
	PrintVerbose("Loaded %d check definitions", len(checkDefs))

	engine := checks.NewEngine(root, checkDefs, store, checks.Options{
		Granularity: cfg.Granularity,
		AllLogs:     cfg.AllLogs,
		Workers:     cfg.Workers,
		Since:       since,
		ScratchDir:  cfg.ScratchDir,
	})
	sections, results, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	sink := scenario.NewCollectingSink()
	scenarioDefs, err := loadScenarioDefs(cfg)
	if err != nil {
		return err
	}
	PrintVerbose("Loaded %d scenario definitions", len(scenarioDefs))

	if len(scenarioDefs) > 0 {
		env, err := buildEnv(root, results)
		if err != nil {
			return err
		}
		fired := scenario.NewRunner(scenarioDefs, env, sink).Run()
		PrintVerbose("%d scenarios fired", fired)
	}

	format, ok := report.ParseFormat(GetOutput())
	if !ok {
		return fmt.Errorf("invalid output format: %s (use yaml or json)", GetOutput())
	}
	return report.New(root.Dir(), sections, sink.Issues()).Render(os.Stdout, format)
}

// loadCheckDefs loads check definitions; a missing checks dir is an
// empty set, not an error, so scenario-only defs trees work.
func loadCheckDefs(cfg *config.Run) ([]*checks.Def, error) {
	dir := cfg.ChecksDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return checks.LoadDir(dir)
}

func loadScenarioDefs(cfg *config.Run) ([]*scenario.Def, error) {
	dir := cfg.ScenariosDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return scenario.LoadDir(dir)
}

// buildEnv wires the fact collaborators a scenario condition tree can
// consult.
func buildEnv(root *snapshot.Root, results *search.Results) (*scenario.Env, error) {
	packages, err := facts.LoadPackages(root)
	if err != nil {
		return nil, fmt.Errorf("load package inventory: %w", err)
	}
	services, err := facts.LoadServices(root)
	if err != nil {
		return nil, fmt.Errorf("load service inventory: %w", err)
	}
	files := facts.NewFiles(root)

	registry := facts.NewRegistry()
	registry.Register("packages", packages)
	registry.Register("services", services)
	registry.Register("files", files)

	return &scenario.Env{
		Facts:    registry,
		Packages: packages,
		Search:   results,
		Files:    root,
		Config:   facts.NewConfigFiles(root),
	}, nil
}
