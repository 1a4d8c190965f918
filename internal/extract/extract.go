// Package extract derives warehouse dimension and fact rows from
// decoded input records. All functions are pure.
package extract

import (
	"time"

	"github.com/franz/songplay-warehouse/internal/record"
	"github.com/franz/songplay-warehouse/internal/store"
)

// PlayPage is the event-type sentinel marking a song-play event. Every
// other page value (Home, Login, ...) is discarded before extraction.
const PlayPage = "NextSong"

// IsPlay reports whether the event is a song-play event
func IsPlay(e *record.Event) bool {
	return e.Page == PlayPage
}

// SongRow derives a song dimension row from a song-metadata record
func SongRow(s *record.Song) *store.Song {
	return &store.Song{
		SongID:   s.SongID,
		Title:    s.Title,
		ArtistID: s.ArtistID,
		Year:     s.Year,
		Duration: s.Duration,
	}
}

// ArtistRow derives an artist dimension row from the artist fields
// embedded in a song-metadata record
func ArtistRow(s *record.Song) *store.Artist {
	return &store.Artist{
		ArtistID:  s.ArtistID,
		Name:      s.ArtistName,
		Location:  s.ArtistLocation,
		Latitude:  s.ArtistLatitude,
		Longitude: s.ArtistLongitude,
	}
}

// UserRow derives a user dimension row from a play event
func UserRow(e *record.Event) *store.User {
	return &store.User{
		UserID:    e.UserID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Gender:    e.Gender,
		Level:     e.Level,
	}
}

// TimeBucketRow derives the time dimension row for an epoch-millisecond
// event timestamp. The bucket is keyed by epoch seconds (sub-second
// precision is discarded) and the calendar components are computed in
// UTC. Weekday is Monday=0 through Sunday=6.
func TimeBucketRow(tsMillis int64) *store.TimeBucket {
	t := time.UnixMilli(tsMillis).UTC()
	_, week := t.ISOWeek()

	return &store.TimeBucket{
		StartTime: tsMillis / 1000,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   (int(t.Weekday()) + 6) % 7,
	}
}

// SongplayRow combines a play event with its resolution result into one
// fact row. match is nil when resolution missed, leaving song_id and
// artist_id null.
func SongplayRow(e *record.Event, match *store.SongMatch) *store.Songplay {
	sp := &store.Songplay{
		StartTime: e.TS / 1000,
		UserID:    e.UserID,
		Level:     e.Level,
		SessionID: e.SessionID,
		Location:  e.Location,
		UserAgent: e.UserAgent,
	}

	if match != nil {
		sp.SongID = &match.SongID
		sp.ArtistID = &match.ArtistID
	}

	return sp
}
