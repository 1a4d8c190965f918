package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/franz/songplay-warehouse/internal/store"
	"github.com/franz/songplay-warehouse/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts for the warehouse tables",
	Long: `Display row counts for every warehouse table, plus how many
songplay fact rows resolved to a known song/artist pair.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer db.Close()

	counts, err := db.RowCounts()
	if err != nil {
		return fmt.Errorf("failed to gather counts: %w", err)
	}

	util.InfoLog("=== Warehouse Stats ===")
	util.InfoLog("Database: %s", dbPath)
	util.InfoLog("")
	util.InfoLog("Dimensions:")
	util.InfoLog("  songs:   %s", humanize.Comma(int64(counts.Songs)))
	util.InfoLog("  artists: %s", humanize.Comma(int64(counts.Artists)))
	util.InfoLog("  users:   %s", humanize.Comma(int64(counts.Users)))
	util.InfoLog("  time:    %s", humanize.Comma(int64(counts.TimeRows)))
	util.InfoLog("  levels:  %s", humanize.Comma(int64(counts.Levels)))
	util.InfoLog("")
	util.InfoLog("Facts:")
	util.InfoLog("  songplays: %s", humanize.Comma(int64(counts.Songplays)))
	if counts.Songplays > 0 {
		util.InfoLog("  resolved:   %s (%.1f%%)",
			humanize.Comma(int64(counts.Resolved)),
			100*float64(counts.Resolved)/float64(counts.Songplays))
		util.InfoLog("  unresolved: %s", humanize.Comma(int64(counts.Unresolved)))
	}

	return nil
}
