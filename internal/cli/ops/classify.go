package ops

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/jobs"
	"github.com/semantis/zalr-backend/internal/pipeline"
)

// ClassifyCmd returns the classify command
func ClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify judgments awaiting a practice area",
		Long: `Run one classification sweep: pick up judgments in the long_summarized
state and assign each a practice area through the fallback chain. With
--force, already-classified judgments are reclassified instead, which is
useful after a taxonomy change.`,
		RunE: runClassify,
	}

	cmd.Flags().Int("batch-size", jobs.DefaultBatchSize, "Maximum judgments to classify in one sweep")
	cmd.Flags().Bool("force", false, "Reclassify judgments that already have a practice area")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	batch, _ := cmd.Flags().GetInt("batch-size")
	force, _ := cmd.Flags().GetBool("force")

	cfg, pool, cleanup, err := connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	deps, err := buildDeps(ctx, cfg, pool, 0)
	if err != nil {
		return err
	}

	if force {
		return reclassify(cmd, deps, batch)
	}

	worker := jobs.NewClassifyWorker(deps.Judgments, deps.Chain, batch)
	return worker.ProcessJobs(ctx)
}

func reclassify(cmd *cobra.Command, deps pipeline.Deps, batch int) error {
	ctx := cmd.Context()

	items, err := deps.Judgments.ListByState(ctx, domain.StateClassified, "", 0)
	if err != nil {
		return fmt.Errorf("failed to fetch classified judgments: %w", err)
	}
	if len(items) > batch {
		items = items[:batch]
	}

	for _, j := range items {
		res := deps.Chain.Classify(ctx, j.ShortSummary)
		if res.Label == j.PracticeArea {
			continue
		}
		if err := deps.Judgments.SetPracticeArea(ctx, j.ID, res.Label, domain.StateClassified); err != nil {
			log.Printf("reclassify judgment %s: %v", j.ID, err)
			continue
		}
		log.Printf("reclassified judgment %s: %s -> %s (%s tier)", j.ID, j.PracticeArea, res.Label, res.Tier)
	}
	return nil
}
