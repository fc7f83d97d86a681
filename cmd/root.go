package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"example.com/finbook/services/ledger/config"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Personal finance ledger using event sourcing",
	Long:  `A personal finance service built on an append-only event log with synchronous projections`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func initConfig() {
	var err error

	if cfgFile != "" {
		// Use config file from the flag
		config.SetConfigFile(cfgFile)
	}

	cfg, err = config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
}
