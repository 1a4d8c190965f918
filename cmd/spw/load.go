package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/franz/songplay-warehouse/internal/pipeline"
	"github.com/franz/songplay-warehouse/internal/report"
	"github.com/franz/songplay-warehouse/internal/scan"
	"github.com/franz/songplay-warehouse/internal/store"
	"github.com/franz/songplay-warehouse/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load song-metadata and event-log files into the warehouse",
	Long: `Load all JSON files from the song-data and log-data directories.

The load runs in two strictly ordered phases:
1. Song metadata: populates the song and artist dimensions
2. Event logs: populates user and time dimensions, resolves each play
   against the song dimension and inserts songplay fact rows

Each file is committed individually, so an interrupted load keeps all
fully processed files and the whole run can simply be repeated: every
write is an idempotent upsert or an insert-or-ignore.`,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().String("song-data", "", "directory containing song-metadata JSON files")
	loadCmd.Flags().String("log-data", "", "directory containing event-log JSON files")
	viper.BindPFlag("song-data", loadCmd.Flags().Lookup("song-data"))
	viper.BindPFlag("log-data", loadCmd.Flags().Lookup("log-data"))
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	songData := viper.GetString("song-data")
	logData := viper.GetString("log-data")
	if songData == "" || logData == "" {
		return fmt.Errorf("both --song-data and --log-data directories are required")
	}

	dbPath := viper.GetString("db")
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	for _, dir := range []string{songData, logData} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	util.InfoLog("Opening warehouse: %s", dbPath)

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer db.Close()

	logLevel := report.LevelInfo
	if viper.GetBool("quiet") {
		logLevel = report.LevelWarning
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger("artifacts", logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	defer logger.Close()

	if logger.Path() != "" {
		util.InfoLog("Run log: %s", logger.Path())
	}

	songFiles, err := scan.ListJSONFiles(songData)
	if err != nil {
		return fmt.Errorf("failed to enumerate song files: %w", err)
	}
	logFiles, err := scan.ListJSONFiles(logData)
	if err != nil {
		return fmt.Errorf("failed to enumerate log files: %w", err)
	}

	runner := pipeline.NewRunner(db, logger)

	result, err := runner.Run(ctx, []pipeline.Phase{
		{Name: "song-metadata", Files: songFiles, Processor: &pipeline.SongFileProcessor{}},
		{Name: "event-log", Files: logFiles, Processor: &pipeline.LogFileProcessor{Logger: logger}},
	})
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	util.InfoLog("")
	util.SuccessLog("=== Load Summary ===")
	util.InfoLog("Total time: %v", result.Duration.Round(time.Millisecond))
	util.InfoLog("Files processed: %d", result.FilesProcessed)
	util.InfoLog("Rows written: %d", result.Counts.Total())
	util.InfoLog("  Songs: %d, Artists: %d", result.Counts.Songs, result.Counts.Artists)
	util.InfoLog("  Users: %d, Time buckets: %d", result.Counts.Users, result.Counts.TimeBuckets)
	util.InfoLog("  Songplays: %d (resolved: %d, unresolved: %d)",
		result.Counts.Songplays, result.Counts.ResolveHits, result.Counts.ResolveMisses)

	if result.FilesFailed > 0 {
		util.WarnLog("Files failed: %d", result.FilesFailed)
		for _, f := range result.Failures {
			util.ErrorLog("  [%s] %s: %v", f.Phase, f.Path, f.Err)
		}
		return fmt.Errorf("%d file(s) failed to load", result.FilesFailed)
	}

	util.InfoLog("")
	util.InfoLog("Next step: spw stats")

	return nil
}
