// Package record decodes the two raw input formats: song-metadata files
// (one JSON object per file) and event-log files (one JSON object per
// line). It knows nothing about the warehouse schema.
package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Song is one decoded song-metadata record. A single file carries both
// the song and its embedded artist fields.
type Song struct {
	SongID          string   `json:"song_id"`
	Title           string   `json:"title"`
	ArtistID        string   `json:"artist_id"`
	Year            int      `json:"year"`
	Duration        float64  `json:"duration"`
	ArtistName      string   `json:"artist_name"`
	ArtistLocation  string   `json:"artist_location"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
}

// Event is one decoded event-log line. Fields beyond Page are only
// meaningful for song-play events.
type Event struct {
	Page      string  `json:"page"`
	TS        int64   `json:"ts"`
	UserID    string  `json:"userId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Gender    string  `json:"gender"`
	Level     string  `json:"level"`
	Song      string  `json:"song"`
	Artist    string  `json:"artist"`
	Length    float64 `json:"length"`
	SessionID int64   `json:"sessionId"`
	Location  string  `json:"location"`
	UserAgent string  `json:"userAgent"`
}

// ReadSongFile decodes a single song-metadata file
func ReadSongFile(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read song file: %w", err)
	}

	var s Song
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode song file: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Song) validate() error {
	switch {
	case s.SongID == "":
		return fmt.Errorf("song record missing song_id")
	case s.ArtistID == "":
		return fmt.Errorf("song record missing artist_id")
	case s.Title == "":
		return fmt.Errorf("song record %s missing title", s.SongID)
	}
	return nil
}

// ReadEventFile decodes a newline-delimited JSON event-log file. A
// malformed line fails the whole file; blank lines are skipped.
func ReadEventFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	defer f.Close()

	var events []Event

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("failed to decode event at line %d: %w", lineNum, err)
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}

	return events, nil
}
