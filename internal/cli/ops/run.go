package ops

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/pipeline"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one pipeline stage",
		Long: `Run a single pipeline stage over the judgments eligible for it.

Stages:
  1  scrape            fetch case listings and text from SAFLII
  2  fix-metadata      extract citation, court, date and judges
  3  chunk             split judgment text into overlapping windows
  4  embed             embed chunks and the judgment vector
  5  short-summary     generate the catalogue summary
  6  score             score reportability out of 100
  7  long-summary      generate the long summary for reportable cases
  8  classify          assign a practice area`,
		RunE: runStage,
	}

	cmd.Flags().Int("stage", 0, "Stage number to run (1-8)")
	_ = cmd.MarkFlagRequired("stage")
	addStageFlags(cmd)

	return cmd
}

func runStage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	stageNum, _ := cmd.Flags().GetInt("stage")
	stage, err := pipeline.ParseStage(stageNum)
	if err != nil {
		return err
	}

	opts := optionsFromFlags(cmd)
	if stage == pipeline.StageScrape && opts.Year == 0 && opts.SingleCaseURL == "" {
		return fmt.Errorf("scrape requires --year or --case-url")
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
	summary, err := orch.RunStage(ctx, stage, opts)
	if err != nil {
		return err
	}

	log.Println(summary)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d judgments failed", summary.Failed, summary.Selected)
	}
	return nil
}
