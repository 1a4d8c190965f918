package store

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test-warehouse.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func inTx(t *testing.T, st *Store, fn func(tx *sql.Tx) error) {
	t.Helper()
	if err := st.Transaction(fn); err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestOpenAndMigrate(t *testing.T) {
	st := openTestStore(t)

	version, err := st.getSchemaVersion()
	if err != nil {
		t.Fatalf("failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("expected schema version %d, got %d", currentSchemaVersion, version)
	}

	tables := []string{"songs", "artists", "users", "time", "levels", "songplays", "schema_version"}
	for _, table := range tables {
		var count int
		err := st.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("failed to query table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}

	// Level enumeration is seeded by the migration
	var levels int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM levels").Scan(&levels); err != nil {
		t.Fatalf("failed to count levels: %v", err)
	}
	if levels != 2 {
		t.Errorf("expected 2 seeded levels, got %d", levels)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	st, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	st.Close()

	// Reopening must not duplicate seed rows or fail
	st, err = Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer st.Close()

	var levels int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM levels").Scan(&levels); err != nil {
		t.Fatalf("failed to count levels: %v", err)
	}
	if levels != 2 {
		t.Errorf("expected 2 levels after reopen, got %d", levels)
	}
}

func TestUpsertSongTwice(t *testing.T) {
	st := openTestStore(t)

	inTx(t, st, func(tx *sql.Tx) error {
		return UpsertSong(tx, &Song{SongID: "S1", Title: "Foo", ArtistID: "A1", Year: 2000, Duration: 180.5})
	})
	inTx(t, st, func(tx *sql.Tx) error {
		return UpsertSong(tx, &Song{SongID: "S1", Title: "Foo (Remastered)", ArtistID: "A1", Year: 2001, Duration: 181.0})
	})

	var count int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM songs").Scan(&count); err != nil {
		t.Fatalf("failed to count songs: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 song row, got %d", count)
	}

	var title string
	var year int
	var duration float64
	err := st.db.QueryRow("SELECT title, year, duration FROM songs WHERE song_id = 'S1'").
		Scan(&title, &year, &duration)
	if err != nil {
		t.Fatalf("failed to read song: %v", err)
	}
	if title != "Foo (Remastered)" || year != 2001 || duration != 181.0 {
		t.Errorf("expected latest values, got title=%q year=%d duration=%v", title, year, duration)
	}
}

func TestUpsertArtistNullCoordinates(t *testing.T) {
	st := openTestStore(t)

	inTx(t, st, func(tx *sql.Tx) error {
		return UpsertArtist(tx, &Artist{ArtistID: "A1", Name: "Bar", Location: "NYC"})
	})

	var lat, lon sql.NullFloat64
	err := st.db.QueryRow("SELECT latitude, longitude FROM artists WHERE artist_id = 'A1'").Scan(&lat, &lon)
	if err != nil {
		t.Fatalf("failed to read artist: %v", err)
	}
	if lat.Valid || lon.Valid {
		t.Errorf("expected NULL coordinates, got %v / %v", lat, lon)
	}

	// Second encounter with coordinates overwrites
	latV, lonV := 40.7, -74.0
	inTx(t, st, func(tx *sql.Tx) error {
		return UpsertArtist(tx, &Artist{ArtistID: "A1", Name: "Bar", Location: "NYC", Latitude: &latV, Longitude: &lonV})
	})

	err = st.db.QueryRow("SELECT latitude, longitude FROM artists WHERE artist_id = 'A1'").Scan(&lat, &lon)
	if err != nil {
		t.Fatalf("failed to reread artist: %v", err)
	}
	if !lat.Valid || lat.Float64 != 40.7 || !lon.Valid || lon.Float64 != -74.0 {
		t.Errorf("expected updated coordinates, got %v / %v", lat, lon)
	}
}

func TestUpsertUserLastWriteWins(t *testing.T) {
	st := openTestStore(t)

	inTx(t, st, func(tx *sql.Tx) error {
		if err := UpsertUser(tx, &User{UserID: "U1", FirstName: "Lily", LastName: "Koch", Gender: "F", Level: "free"}); err != nil {
			return err
		}
		// Same user upgrades mid-file
		return UpsertUser(tx, &User{UserID: "U1", FirstName: "Lily", LastName: "Koch", Gender: "F", Level: "paid"})
	})

	var count int
	var level string
	if err := st.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if err := st.db.QueryRow("SELECT level FROM users WHERE user_id = 'U1'").Scan(&level); err != nil {
		t.Fatalf("failed to read user: %v", err)
	}
	if count != 1 || level != "paid" {
		t.Errorf("expected 1 user with level paid, got %d users, level %q", count, level)
	}
}

func TestUpsertTimeBucketIdempotent(t *testing.T) {
	st := openTestStore(t)

	tb := &TimeBucket{StartTime: 1541990000, Hour: 2, Day: 12, Week: 46, Month: 11, Year: 2018, Weekday: 0}
	inTx(t, st, func(tx *sql.Tx) error { return UpsertTimeBucket(tx, tb) })
	inTx(t, st, func(tx *sql.Tx) error { return UpsertTimeBucket(tx, tb) })

	var count int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM time").Scan(&count); err != nil {
		t.Fatalf("failed to count time rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 time row, got %d", count)
	}
}

// seedPlayDims inserts the dimension rows a fact row needs
func seedPlayDims(t *testing.T, st *Store) {
	t.Helper()
	inTx(t, st, func(tx *sql.Tx) error {
		if err := UpsertTimeBucket(tx, &TimeBucket{StartTime: 1541990000, Hour: 2, Day: 12, Week: 46, Month: 11, Year: 2018}); err != nil {
			return err
		}
		return UpsertUser(tx, &User{UserID: "U1", Level: "free"})
	})
}

func TestInsertSongplayDuplicateIgnored(t *testing.T) {
	st := openTestStore(t)
	seedPlayDims(t, st)

	songID, artistID := "S1", "A1"
	first := &Songplay{
		StartTime: 1541990000, UserID: "U1", Level: "free",
		SongID: &songID, ArtistID: &artistID,
		SessionID: 1, Location: "NYC", UserAgent: "Mozilla/5.0",
	}
	inTx(t, st, func(tx *sql.Tx) error { return InsertSongplay(tx, first) })

	// Same key, different resolution result: must be a no-op
	second := &Songplay{
		StartTime: 1541990000, UserID: "U1", Level: "free",
		SessionID: 1, Location: "elsewhere", UserAgent: "curl",
	}
	inTx(t, st, func(tx *sql.Tx) error { return InsertSongplay(tx, second) })

	var count int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM songplays").Scan(&count); err != nil {
		t.Fatalf("failed to count songplays: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 songplay row, got %d", count)
	}

	sp, err := st.GetSongplay(1541990000, "U1", 1)
	if err != nil {
		t.Fatalf("failed to get songplay: %v", err)
	}
	if sp == nil {
		t.Fatal("expected songplay row, got nil")
	}
	if sp.SongID == nil || *sp.SongID != "S1" || sp.Location != "NYC" {
		t.Errorf("first write did not win: %+v", sp)
	}
}

func TestInsertSongplayMissingDimension(t *testing.T) {
	st := openTestStore(t)

	// No time/user rows loaded: the foreign keys must reject this
	err := st.Transaction(func(tx *sql.Tx) error {
		return InsertSongplay(tx, &Songplay{
			StartTime: 99, UserID: "nobody", Level: "free", SessionID: 1,
		})
	})
	if err == nil {
		t.Error("expected constraint violation for fact row without dimensions")
	}
}

func TestResolveSong(t *testing.T) {
	st := openTestStore(t)

	inTx(t, st, func(tx *sql.Tx) error {
		if err := UpsertSong(tx, &Song{SongID: "S1", Title: "Foo", ArtistID: "A1", Year: 2000, Duration: 180.5}); err != nil {
			return err
		}
		return UpsertArtist(tx, &Artist{ArtistID: "A1", Name: "Bar", Location: "NYC"})
	})

	inTx(t, st, func(tx *sql.Tx) error {
		// Exact match
		m, err := ResolveSong(tx, "Foo", "Bar", 180.5)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if m == nil || m.SongID != "S1" || m.ArtistID != "A1" {
			t.Errorf("expected match (S1, A1), got %+v", m)
		}

		// Misses: unknown title, wrong artist, duration off by a hair
		for _, q := range []struct {
			title, artist string
			duration      float64
		}{
			{"Unknown", "Bar", 180.5},
			{"Foo", "Baz", 180.5},
			{"Foo", "Bar", 180.51},
			{"foo", "Bar", 180.5}, // case matters
		} {
			m, err := ResolveSong(tx, q.title, q.artist, q.duration)
			if err != nil {
				t.Fatalf("resolve failed for %v: %v", q, err)
			}
			if m != nil {
				t.Errorf("expected miss for %v, got %+v", q, m)
			}
		}
		return nil
	})
}

func TestRowCounts(t *testing.T) {
	st := openTestStore(t)
	seedPlayDims(t, st)

	inTx(t, st, func(tx *sql.Tx) error {
		return InsertSongplay(tx, &Songplay{
			StartTime: 1541990000, UserID: "U1", Level: "free", SessionID: 7,
		})
	})

	counts, err := st.RowCounts()
	if err != nil {
		t.Fatalf("RowCounts failed: %v", err)
	}

	if counts.Levels != 2 {
		t.Errorf("expected 2 levels, got %d", counts.Levels)
	}
	if counts.Users != 1 || counts.TimeRows != 1 || counts.Songplays != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if counts.Unresolved != 1 || counts.Resolved != 0 {
		t.Errorf("expected 1 unresolved songplay, got %+v", counts)
	}
}
