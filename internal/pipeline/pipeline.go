// Package pipeline drives the two-phase load: all song-metadata files
// first (song/artist dimensions), then all event-log files (user/time
// dimensions plus songplay facts, which resolve against phase 1's
// output). Each file is loaded in its own transaction, so a crash loses
// at most one file's work and a re-run is safe everywhere else.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/franz/songplay-warehouse/internal/report"
	"github.com/franz/songplay-warehouse/internal/store"
	"github.com/franz/songplay-warehouse/internal/util"
	"github.com/schollz/progressbar/v3"
)

// FileProcessor loads one input file's rows inside the given
// transaction. The two implementations are the song-metadata and
// event-log strategies, selected once per phase.
type FileProcessor interface {
	Name() string
	Process(tx *sql.Tx, path string) (FileCounts, error)
}

// FileCounts tallies the rows produced from one file (or a whole run)
type FileCounts struct {
	Songs         int
	Artists       int
	Users         int
	TimeBuckets   int
	Songplays     int
	ResolveHits   int
	ResolveMisses int
}

func (c *FileCounts) add(other FileCounts) {
	c.Songs += other.Songs
	c.Artists += other.Artists
	c.Users += other.Users
	c.TimeBuckets += other.TimeBuckets
	c.Songplays += other.Songplays
	c.ResolveHits += other.ResolveHits
	c.ResolveMisses += other.ResolveMisses
}

// Total returns the total number of rows written
func (c FileCounts) Total() int {
	return c.Songs + c.Artists + c.Users + c.TimeBuckets + c.Songplays
}

// Phase is one ordered batch of files handled by a single strategy
type Phase struct {
	Name      string
	Files     []string
	Processor FileProcessor
}

// FileFailure records a file that could not be processed
type FileFailure struct {
	Phase string
	Path  string
	Err   error
}

// Result aggregates a full pipeline run
type Result struct {
	FilesProcessed int
	FilesFailed    int
	Failures       []FileFailure
	Counts         FileCounts
	Duration       time.Duration
}

// Runner executes phases in order with per-file commits
type Runner struct {
	store  *store.Store
	logger *report.EventLogger
}

// NewRunner creates a pipeline runner
func NewRunner(st *store.Store, logger *report.EventLogger) *Runner {
	return &Runner{store: st, logger: logger}
}

// decodeError marks a per-file input failure. The run continues with
// the next file; load errors (e.g. constraint violations) abort instead
// because they mean an ordering invariant broke.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// Run executes the phases strictly in order. Within a phase, files are
// processed one at a time and committed individually.
func (r *Runner) Run(ctx context.Context, phases []Phase) (*Result, error) {
	result := &Result{}
	start := time.Now()

	for _, phase := range phases {
		if err := r.runPhase(ctx, phase, result); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runPhase(ctx context.Context, phase Phase, result *Result) error {
	util.InfoLog("=== Phase: %s ===", phase.Name)
	util.InfoLog("%d files found", len(phase.Files))

	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(len(phase.Files),
			progressbar.OptionSetDescription(phase.Name),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	processed, failed := 0, 0

	for i, path := range phase.Files {
		if err := ctx.Err(); err != nil {
			return err
		}

		fileStart := time.Now()

		var counts FileCounts
		err := r.store.Transaction(func(tx *sql.Tx) error {
			var err error
			counts, err = phase.Processor.Process(tx, path)
			return err
		})

		if err != nil {
			var de *decodeError
			if errors.As(err, &de) {
				// Bad input file: the transaction rolled back, nothing
				// from it was committed. Record and move on.
				util.ErrorLog("Skipping %s: %v", path, err)
				r.logger.LogFileFailed(phase.Name, path, err)
				failed++
				result.FilesFailed++
				result.Failures = append(result.Failures, FileFailure{
					Phase: phase.Name,
					Path:  path,
					Err:   err,
				})
				continue
			}
			// Load errors indicate a broken invariant, not bad input
			r.logger.LogFileFailed(phase.Name, path, err)
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		processed++
		result.FilesProcessed++
		result.Counts.add(counts)
		r.logger.LogFileDone(phase.Name, path, counts.Total(), time.Since(fileStart))

		if bar != nil {
			bar.Set(i + 1)
		} else {
			util.InfoLog("%d/%d files processed", i+1, len(phase.Files))
		}
	}

	if bar != nil {
		bar.Finish()
	}

	util.SuccessLog("Phase %s complete: %d/%d files", phase.Name,
		processed, processed+failed)

	return nil
}
