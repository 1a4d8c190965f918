package main

import (
	"fmt"
	"os"

	"github.com/franz/songplay-warehouse/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "spw",
		Short: "Songplay Warehouse - load song and event-log JSON into a star schema",
		Long: `spw (Songplay Warehouse) is a one-shot, directory-driven ETL tool.
It reads song-metadata JSON files and newline-delimited event-log files and
loads them into a normalized star schema (songplays fact table plus song,
artist, user, time and level dimensions) with idempotent upserts, so the
same inputs can be re-loaded safely.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/example.yaml)")
	rootCmd.PersistentFlags().String("db", "warehouse.db", "warehouse database file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("example")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SPW")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
