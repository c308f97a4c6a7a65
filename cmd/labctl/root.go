// labctl inspects lab catalogs and replays pour sequences offline.
//
// Usage:
//
//	labctl validate [--catalog=<dir>]
//	labctl substances [--catalog=<dir>] [--reactions]
//	labctl mix [--guided] [--advance] HCl+NaOH Zn+HCl ...
//	labctl report -o <file.xlsx> [--guided] [--advance] HCl+NaOH ...
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-lab/internal/catalog"
)

// version is set at build time via -ldflags.
var version = "dev"

// catalogDir is shared by every subcommand. Empty means the embedded catalog.
var catalogDir string

var rootCmd = &cobra.Command{
	Use:   "labctl",
	Short: "Inspect chemistry lab catalogs and replay experiments",
	Long:  "labctl validates reaction catalogs, lists substances, and replays\npour sequences through the same engine the lab server runs.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogDir, "catalog", "", "Catalog directory (default: embedded catalog)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(substancesCmd)
	rootCmd.AddCommand(mixCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.Version = version
}

func loadCatalog() (*catalog.Catalog, error) {
	if catalogDir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(catalogDir)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
