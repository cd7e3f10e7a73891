package ops

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/pipeline"
)

// RunAllCmd returns the run-all command
func RunAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-all",
		Short: "Run the full pipeline",
		Long:  "Run every pipeline stage in order, from scrape through classify, for a court and year",
		RunE:  runAll,
	}

	addStageFlags(cmd)

	return cmd
}

func runAll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts := optionsFromFlags(cmd)
	if opts.Year == 0 && opts.SingleCaseURL == "" {
		return fmt.Errorf("run-all requires --year or --case-url")
	}

	cfg, pool, cleanup, err := connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	deps, err := buildDeps(ctx, cfg, pool, opts.Delay)
	if err != nil {
		return err
	}

	orch := pipeline.NewOrchestrator(deps)
	summaries, err := orch.RunAll(ctx, opts)
	for _, summary := range summaries {
		log.Println(summary)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, summary := range summaries {
		failed += summary.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d judgments failed across the run", failed)
	}
	return nil
}
