package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "herohub",
	Short: "Service request marketplace backend",
	Long: `herohub matches people who need a task done with registered heroes,
keeps the heroes' wallets and pushes change notifications to clients.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
