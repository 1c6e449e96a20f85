package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/KinkiKnights/res25-joy/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "res25-joy",
	Short:   "Chunked HTTP file-transfer server",
	Long: `res25-joy serves static files from a directory and accepts uploads
via POST, streaming large bodies through a bounded chunk buffer so memory
use stays flat regardless of file size.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		var configFiles []string
		if configFile != "" {
			configFiles = []string{configFile}
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(withConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "document root directory (default: ., env: RES25_SERVER_ROOT)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path (default: server.log, env: RES25_LOG_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: RES25_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
