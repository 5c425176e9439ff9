// Package state keeps a sqlite journal of plays and import runs next to the
// XML catalog. The catalog stays the source of truth; the journal only adds
// history that the catalog cannot hold.
package state

import (
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/llehouerou/crate/internal/catalog"
	dbutil "github.com/llehouerou/crate/internal/db"
)

const (
	appName    = "crate"
	dbFileName = "history.db"
)

// Play is one journaled play.
type Play struct {
	SongID    int
	Title     string
	Artist    string
	Album     string
	Location  string
	PlayCount int
	PlayedAt  time.Time
}

// ImportRun is one finished import or rescan.
type ImportRun struct {
	Root       string
	Kind       string // "import" or "rescan"
	Total      int
	Imported   int
	Added      int
	Skipped    int
	Elapsed    time.Duration
	FinishedAt time.Time
}

// Journal is the history database.
type Journal struct {
	db *sql.DB
}

// DefaultPath returns the journal location under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens the journal at path, or at DefaultPath when path is empty.
func Open(path string) (*Journal, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	db, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordPlay appends a play. It satisfies catalog.PlayRecorder.
func (j *Journal) RecordPlay(song catalog.Record, at time.Time) error {
	return dbutil.WithTx(j.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO plays (song_id, title, artist, album, location, play_count, played_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, song.ID, song.Title, dbutil.NullString(song.Artist), dbutil.NullString(song.Album),
			song.Location, song.PlayCount, at.UnixMilli())
		return err
	})
}

// RecentPlays returns up to limit plays, newest first. A limit <= 0 returns
// every play.
func (j *Journal) RecentPlays(limit int) ([]Play, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(`
		SELECT song_id, title, artist, album, location, play_count, played_at
		FROM plays
		ORDER BY played_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plays := make([]Play, 0)
	for rows.Next() {
		var p Play
		var artist, album sql.NullString
		var playedAt int64
		if err := rows.Scan(&p.SongID, &p.Title, &artist, &album, &p.Location, &p.PlayCount, &playedAt); err != nil {
			return nil, err
		}
		p.Artist = dbutil.NullStringValue(artist)
		p.Album = dbutil.NullStringValue(album)
		p.PlayedAt = time.UnixMilli(playedAt)
		plays = append(plays, p)
	}
	return plays, rows.Err()
}

// RecordImport appends a finished import run.
func (j *Journal) RecordImport(run ImportRun) error {
	if run.Kind == "" {
		run.Kind = "import"
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	_, err := j.db.Exec(`
		INSERT INTO import_runs (root, kind, total, imported, added, skipped, elapsed_ms, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Root, run.Kind, run.Total, run.Imported, run.Added, run.Skipped,
		run.Elapsed.Milliseconds(), run.FinishedAt.UnixMilli())
	return err
}

// LastImport returns the most recent import run, or nil if there is none.
func (j *Journal) LastImport() (*ImportRun, error) {
	var run ImportRun
	var elapsed, finished int64
	err := j.db.QueryRow(`
		SELECT root, kind, total, imported, added, skipped, elapsed_ms, finished_at
		FROM import_runs
		ORDER BY finished_at DESC, id DESC
		LIMIT 1
	`).Scan(&run.Root, &run.Kind, &run.Total, &run.Imported, &run.Added, &run.Skipped, &elapsed, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Elapsed = time.Duration(elapsed) * time.Millisecond
	run.FinishedAt = time.UnixMilli(finished)
	return &run, nil
}
