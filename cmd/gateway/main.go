package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Authentication gateway in front of a backend service",
	Long: `gateway issues short-lived API keys after the backend accepts a client's
credentials, then checks key validity, per-IP abuse and per-endpoint roles
before forwarding each call to the backend.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gateway.yaml",
		"Path to the YAML configuration file (empty: environment only)")
	rootCmd.AddCommand(serveCmd, validateCmd)
}
