package pipeline

import (
	"database/sql"

	"github.com/franz/songplay-warehouse/internal/extract"
	"github.com/franz/songplay-warehouse/internal/record"
	"github.com/franz/songplay-warehouse/internal/store"
)

// SongFileProcessor loads one song-metadata file: one song row and one
// artist row, upserted independently.
type SongFileProcessor struct{}

// Name returns the strategy name
func (p *SongFileProcessor) Name() string { return "song-metadata" }

// Process decodes the file and upserts its song and artist dimensions
func (p *SongFileProcessor) Process(tx *sql.Tx, path string) (FileCounts, error) {
	var counts FileCounts

	s, err := record.ReadSongFile(path)
	if err != nil {
		return counts, &decodeError{err: err}
	}

	if err := store.UpsertSong(tx, extract.SongRow(s)); err != nil {
		return counts, err
	}
	counts.Songs++

	if err := store.UpsertArtist(tx, extract.ArtistRow(s)); err != nil {
		return counts, err
	}
	counts.Artists++

	return counts, nil
}
