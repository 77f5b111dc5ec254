package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"driftcap/internal/config"
	"driftcap/pkg/errors"
)

var (
	flagVerbose bool
	flagQuiet   bool

	rootCmd = &cobra.Command{
		Use:   "driftcap",
		Short: "Hash-based change data capture for SQL Server",
		Long: "driftcap snapshots monitored SQL Server tables, compares row hashes against " +
			"a stored baseline and records every insert, update and delete as a change log.",
		SilenceUsage: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errors.GetGlobalErrorHandler().Handle(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-essential output")
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(config.GetConfigPath())

	viper.SetEnvPrefix("DRIFTCAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine, commands that need one report it.
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) && flagVerbose {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}
