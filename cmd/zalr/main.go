package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/cli"
	"github.com/semantis/zalr-backend/internal/cli/ops"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "zalr",
		Short: "ZALR pipeline CLI",
		Long: `ZALR CLI runs the judgment publishing pipeline and curates the catalogue.

Environment variables:
  ZALR_DATABASE_URL    Postgres connection string (required)
  ZALR_OPENAI_API_KEY  OpenAI key for summarization and scoring stages
  ZALR_VOYAGE_API_KEY  Voyage key for the embed stage
  ZALR_HF_API_TOKEN    Hugging Face token for zero-shot classification`,
		Version: version,
	}

	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(ops.RunCmd())
	rootCmd.AddCommand(ops.RunAllCmd())
	rootCmd.AddCommand(ops.ClassifyCmd())
	rootCmd.AddCommand(ops.ListCmd())
	rootCmd.AddCommand(ops.StatusCmd())
	rootCmd.AddCommand(ops.FeaturedCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
