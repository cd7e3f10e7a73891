package ops

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/domain"
	"github.com/semantis/zalr-backend/internal/repository"
)

// ListCmd returns the list command
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List judgments in a lifecycle state",
		Long:  "List judgments sitting in a given lifecycle state, optionally narrowed by court and year",
		RunE:  runList,
	}

	cmd.Flags().String("state", "", "Lifecycle state to list (e.g. scraped, long_summarized)")
	_ = cmd.MarkFlagRequired("state")
	cmd.Flags().String("court", "", "Court code to select")
	cmd.Flags().Int("year", 0, "Year to select")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	stateFlag, _ := cmd.Flags().GetString("state")
	court, _ := cmd.Flags().GetString("court")
	year, _ := cmd.Flags().GetInt("year")

	state := domain.LifecycleState(stateFlag)
	if !domain.IsValidLifecycleState(state) {
		return fmt.Errorf("unknown lifecycle state %q", stateFlag)
	}

	_, pool, cleanup, err := connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	repo := repository.NewJudgmentRepository(pool)
	items, err := repo.ListByState(ctx, state, court, year)
	if err != nil {
		return err
	}

	for _, j := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s %d  %s\n", j.ID, j.Court, j.Year, j.Title)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d judgments in state %s\n", len(items), state)
	return nil
}
