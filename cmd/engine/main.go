// Command engine serves the KaamKhojo listing screens and API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kaamkhojo-engine/internal/config"
)

var (
	dataDirFlag       string
	defaultConfigFlag string
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "KaamKhojo listing engine",
	Long:  "Serves the KaamKhojo jobs, services, freelancers and news screens with URL-synced filters, plus a small JSON API.",

	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default $"+config.EnvDataDir+" or ./data)")
	rootCmd.PersistentFlags().StringVar(&defaultConfigFlag, "default-config", "config/config.yml", "config copied into the data dir on first start")
}

func main() {
	// Load .env file if it exists
	config.LoadDotenv(".env")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
