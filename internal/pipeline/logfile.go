package pipeline

import (
	"database/sql"
	"fmt"

	"github.com/franz/songplay-warehouse/internal/extract"
	"github.com/franz/songplay-warehouse/internal/record"
	"github.com/franz/songplay-warehouse/internal/report"
	"github.com/franz/songplay-warehouse/internal/store"
)

// LogFileProcessor loads one event-log file: time and user dimensions
// for every play event, then the songplay fact rows, resolving each
// play against the already-loaded song dimension.
type LogFileProcessor struct {
	Logger *report.EventLogger
}

// Name returns the strategy name
func (p *LogFileProcessor) Name() string { return "event-log" }

// Process decodes the file, filters to play events and loads dimension
// and fact rows. Dimensions go first so the fact's references exist at
// insert time.
func (p *LogFileProcessor) Process(tx *sql.Tx, path string) (FileCounts, error) {
	var counts FileCounts

	events, err := record.ReadEventFile(path)
	if err != nil {
		return counts, &decodeError{err: err}
	}

	for i := range events {
		e := &events[i]
		if !extract.IsPlay(e) {
			continue
		}

		if e.UserID == "" || e.TS == 0 {
			return counts, &decodeError{
				err: fmt.Errorf("play event missing userId or ts in %s", path),
			}
		}

		if err := store.UpsertTimeBucket(tx, extract.TimeBucketRow(e.TS)); err != nil {
			return counts, err
		}
		counts.TimeBuckets++

		if err := store.UpsertUser(tx, extract.UserRow(e)); err != nil {
			return counts, err
		}
		counts.Users++

		match, err := store.ResolveSong(tx, e.Song, e.Artist, e.Length)
		if err != nil {
			return counts, err
		}
		if match != nil {
			counts.ResolveHits++
		} else {
			counts.ResolveMisses++
			p.Logger.LogResolveMiss(path, e.Song, e.Artist)
		}

		if err := store.InsertSongplay(tx, extract.SongplayRow(e, match)); err != nil {
			return counts, err
		}
		counts.Songplays++
	}

	return counts, nil
}
