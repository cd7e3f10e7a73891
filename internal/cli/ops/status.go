package ops

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/repository"
	"github.com/semantis/zalr-backend/internal/service"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline progress",
		Long:  "Show how many judgments sit in each lifecycle state",
		RunE:  runStatus,
	}
}

var statusOrder = []domain.LifecycleState{
	domain.StateScraped,
	domain.StateMetadataFixed,
	domain.StateChunked,
	domain.StateEmbedded,
	domain.StateShortSummarized,
	domain.StateScored,
	domain.StateLongSummarized,
	domain.StateClassified,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, pool, cleanup, err := connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := service.NewJudgmentService(repository.NewJudgmentRepository(pool))
	counts, err := svc.StateCounts(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, state := range statusOrder {
		fmt.Fprintf(cmd.OutOrStdout(), "%-18s %d\n", state, counts[state])
		total += counts[state]
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-18s %d\n", "total", total)
	return nil
}
