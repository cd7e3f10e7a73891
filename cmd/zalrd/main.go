package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/semantis/zalr-backend/internal/cli"
	"github.com/semantis/zalr-backend/internal/cli/daemon"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zalrd",
		Short: "ZALR daemon",
		Long:  "ZALR daemon for serving the judgment API and running the background classify worker",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(daemon.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
