package store

import (
	"database/sql"
	"fmt"
)

// InsertSongplay inserts a fact row, silently ignoring duplicates of
// the (start_time, user_id, session_id) key. Fact rows are never
// updated: re-processing the same raw event must not double-apply it
// nor rewrite it with a different resolution result.
func InsertSongplay(tx *sql.Tx, sp *Songplay) error {
	_, err := tx.Exec(`
		INSERT INTO songplays
			(start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(start_time, user_id, session_id) DO NOTHING
		`, sp.StartTime, sp.UserID, sp.Level, sp.SongID, sp.ArtistID,
		sp.SessionID, sp.Location, sp.UserAgent)

	if err != nil {
		return fmt.Errorf("failed to insert songplay (%d, %s, %d): %w",
			sp.StartTime, sp.UserID, sp.SessionID, err)
	}

	return nil
}

// ResolveSong looks up the (song_id, artist_id) pair whose title,
// artist name and duration exactly equal the query triple. Returns nil
// when nothing matches. Matching is deliberately exact: case, trailing
// whitespace and duration rounding differences all count as misses.
func ResolveSong(tx *sql.Tx, title, artistName string, duration float64) (*SongMatch, error) {
	m := &SongMatch{}
	err := tx.QueryRow(`
		SELECT s.song_id, s.artist_id
		FROM songs s
		JOIN artists a ON s.artist_id = a.artist_id
		WHERE s.title = ? AND a.name = ? AND s.duration = ?
		LIMIT 1
	`, title, artistName, duration).Scan(&m.SongID, &m.ArtistID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve song %q: %w", title, err)
	}

	return m, nil
}

// Counts holds per-table row counts for reporting
type Counts struct {
	Songs      int
	Artists    int
	Users      int
	TimeRows   int
	Levels     int
	Songplays  int
	Resolved   int
	Unresolved int
}

// RowCounts returns row counts for every warehouse table plus the
// resolved/unresolved split of the fact table
func (s *Store) RowCounts() (*Counts, error) {
	c := &Counts{}

	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM songs", &c.Songs},
		{"SELECT COUNT(*) FROM artists", &c.Artists},
		{"SELECT COUNT(*) FROM users", &c.Users},
		{"SELECT COUNT(*) FROM time", &c.TimeRows},
		{"SELECT COUNT(*) FROM levels", &c.Levels},
		{"SELECT COUNT(*) FROM songplays", &c.Songplays},
		{"SELECT COUNT(*) FROM songplays WHERE song_id IS NOT NULL", &c.Resolved},
		{"SELECT COUNT(*) FROM songplays WHERE song_id IS NULL", &c.Unresolved},
	}

	for _, q := range queries {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	return c, nil
}

// GetSongplay retrieves one fact row by its composite key
func (s *Store) GetSongplay(startTime int64, userID string, sessionID int64) (*Songplay, error) {
	sp := &Songplay{}
	err := s.db.QueryRow(`
		SELECT start_time, user_id, level, song_id, artist_id,
		       session_id, COALESCE(location, ''), COALESCE(user_agent, '')
		FROM songplays
		WHERE start_time = ? AND user_id = ? AND session_id = ?
	`, startTime, userID, sessionID).Scan(
		&sp.StartTime, &sp.UserID, &sp.Level, &sp.SongID, &sp.ArtistID,
		&sp.SessionID, &sp.Location, &sp.UserAgent,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get songplay: %w", err)
	}

	return sp, nil
}
