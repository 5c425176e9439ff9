package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			song_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			location TEXT NOT NULL,
			play_count INTEGER NOT NULL,
			played_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_plays_played_at ON plays(played_at DESC);
		CREATE INDEX IF NOT EXISTS idx_plays_song ON plays(song_id);

		CREATE TABLE IF NOT EXISTS import_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'import',
			total INTEGER NOT NULL,
			imported INTEGER NOT NULL,
			added INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
