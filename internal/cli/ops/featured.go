package ops

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/repository"
	"github.com/semantis/zalr-backend/internal/service"
)

// FeaturedCmd returns the featured command
func FeaturedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "featured <judgment-id>",
		Short: "Feature or unfeature a judgment",
		Long:  "Mark a judgment as featured on the landing page. A judgment needs a long summary before it can be featured.",
		Args:  cobra.ExactArgs(1),
		RunE:  runFeatured,
	}

	cmd.Flags().Bool("unset", false, "Remove the featured mark instead of setting it")

	return cmd
}

func runFeatured(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]
	unset, _ := cmd.Flags().GetBool("unset")

	_, pool, cleanup, err := connect(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := service.NewJudgmentService(repository.NewJudgmentRepository(pool))
	if err := svc.SetFeatured(ctx, id, !unset); err != nil {
		return err
	}

	if unset {
		fmt.Fprintf(cmd.OutOrStdout(), "judgment %s is no longer featured\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "judgment %s is now featured\n", id)
	}
	return nil
}
