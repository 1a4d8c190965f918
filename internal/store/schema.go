package store

// Schema v1 - star schema: songplays fact table plus song, artist,
// user, time and level dimensions.
//
// Both time.start_time and songplays.start_time are epoch seconds
// (event timestamps arrive in milliseconds and are truncated once, in
// one place), so the fact -> time reference is exact.
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS songs (
  song_id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  artist_id TEXT NOT NULL,
  year INTEGER,
  duration REAL
);

CREATE INDEX IF NOT EXISTS idx_songs_title_duration ON songs(title, duration);

CREATE TABLE IF NOT EXISTS artists (
  artist_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  location TEXT,
  latitude REAL,
  longitude REAL
);

CREATE INDEX IF NOT EXISTS idx_artists_name ON artists(name);

CREATE TABLE IF NOT EXISTS users (
  user_id TEXT PRIMARY KEY,
  first_name TEXT,
  last_name TEXT,
  gender TEXT,
  level TEXT NOT NULL REFERENCES levels(level)
);

CREATE TABLE IF NOT EXISTS time (
  start_time INTEGER PRIMARY KEY,
  hour INTEGER NOT NULL,
  day INTEGER NOT NULL,
  week INTEGER NOT NULL,
  month INTEGER NOT NULL,
  year INTEGER NOT NULL,
  weekday INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS levels (
  level TEXT PRIMARY KEY
);

-- Fact table. song_id/artist_id are nullable: resolution may miss.
CREATE TABLE IF NOT EXISTS songplays (
  start_time INTEGER NOT NULL REFERENCES time(start_time),
  user_id TEXT NOT NULL REFERENCES users(user_id),
  level TEXT NOT NULL REFERENCES levels(level),
  song_id TEXT,
  artist_id TEXT,
  session_id INTEGER NOT NULL,
  location TEXT,
  user_agent TEXT,
  PRIMARY KEY (start_time, user_id, session_id)
);

CREATE INDEX IF NOT EXISTS idx_songplays_song_id ON songplays(song_id);
CREATE INDEX IF NOT EXISTS idx_songplays_user_id ON songplays(user_id);
`

// The two valid subscription levels, seeded once per database
const seedLevels = `
INSERT OR IGNORE INTO levels (level) VALUES ('free'), ('paid');
`
