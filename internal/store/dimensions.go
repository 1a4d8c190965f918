package store

import (
	"database/sql"
	"fmt"
)

// UpsertSong inserts or updates a song dimension row. Re-encountering
// a song_id overwrites the mutable fields with the latest values.
func UpsertSong(tx *sql.Tx, song *Song) error {
	_, err := tx.Exec(`
		INSERT INTO songs (song_id, title, artist_id, year, duration)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(song_id) DO UPDATE SET
			title = excluded.title,
			artist_id = excluded.artist_id,
			year = excluded.year,
			duration = excluded.duration
		`, song.SongID, song.Title, song.ArtistID, song.Year, song.Duration)

	if err != nil {
		return fmt.Errorf("failed to upsert song %s: %w", song.SongID, err)
	}

	return nil
}

// UpsertArtist inserts or updates an artist dimension row
func UpsertArtist(tx *sql.Tx, artist *Artist) error {
	_, err := tx.Exec(`
		INSERT INTO artists (artist_id, name, location, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(artist_id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			latitude = excluded.latitude,
			longitude = excluded.longitude
		`, artist.ArtistID, artist.Name, artist.Location, artist.Latitude, artist.Longitude)

	if err != nil {
		return fmt.Errorf("failed to upsert artist %s: %w", artist.ArtistID, err)
	}

	return nil
}

// UpsertUser inserts or updates a user dimension row. Last write wins,
// so a free -> paid upgrade later in the same file sticks.
func UpsertUser(tx *sql.Tx, user *User) error {
	_, err := tx.Exec(`
		INSERT INTO users (user_id, first_name, last_name, gender, level)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			gender = excluded.gender,
			level = excluded.level
		`, user.UserID, user.FirstName, user.LastName, user.Gender, user.Level)

	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.UserID, err)
	}

	return nil
}

// UpsertTimeBucket inserts or updates a time dimension row. The
// components are a pure function of start_time, so re-deriving the same
// timestamp overwrites with identical values.
func UpsertTimeBucket(tx *sql.Tx, t *TimeBucket) error {
	_, err := tx.Exec(`
		INSERT INTO time (start_time, hour, day, week, month, year, weekday)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(start_time) DO UPDATE SET
			hour = excluded.hour,
			day = excluded.day,
			week = excluded.week,
			month = excluded.month,
			year = excluded.year,
			weekday = excluded.weekday
		`, t.StartTime, t.Hour, t.Day, t.Week, t.Month, t.Year, t.Weekday)

	if err != nil {
		return fmt.Errorf("failed to upsert time bucket %d: %w", t.StartTime, err)
	}

	return nil
}
