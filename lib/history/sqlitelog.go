package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tabulardb/tabular/lib/core"
	"github.com/tabulardb/tabular/lib/logger"
	"github.com/tabulardb/tabular/lib/transact"
)

var log = logger.GetLogger("history")

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS changesets (
	version INTEGER PRIMARY KEY,
	stream  TEXT    NOT NULL,
	data    BLOB    NOT NULL
);
`

// sqliteLog persists the changeset log in a SQLite database, one row
// per committed version. The stream column carries the identity of the
// producing store so logs of different streams are never mixed up.
type sqliteLog struct {
	db     *sql.DB
	stream string
}

// OpenSQLiteLog opens (or creates) a SQLite-backed changeset log at
// path, bound to the given stream identity. Opening a log written by a
// different stream fails. An empty stream adopts whatever stream
// the log already carries (read-only tooling uses this).
func OpenSQLiteLog(path, stream string) (Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open changeset log: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create changeset schema: %w", err)
	}

	var existing string
	err = db.QueryRow(`SELECT stream FROM changesets LIMIT 1`).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		// fresh log
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("read changeset log: %w", err)
	case stream == "":
		stream = existing
	case existing != stream:
		db.Close()
		return nil, fmt.Errorf("changeset log at %s belongs to stream %s, not %s", path, existing, stream)
	}

	log.Infof("opened changeset log %s (stream %s)", path, stream)
	return &sqliteLog{db: db, stream: stream}, nil
}

func (l *sqliteLog) Append(cs *transact.Changeset) error {
	var head sql.NullInt64
	if err := l.db.QueryRow(`SELECT MAX(version) FROM changesets`).Scan(&head); err != nil {
		return fmt.Errorf("read log head: %w", err)
	}
	if head.Valid && cs.Version <= uint64(head.Int64) {
		return core.NewError(core.RetCInvariantViolation,
			fmt.Sprintf("changeset version %d is not above the log head %d", cs.Version, head.Int64))
	}
	_, err := l.db.Exec(`INSERT INTO changesets (version, stream, data) VALUES (?, ?, ?)`,
		int64(cs.Version), l.stream, cs.Data)
	if err != nil {
		return fmt.Errorf("append changeset %d: %w", cs.Version, err)
	}
	return nil
}

func (l *sqliteLog) Get(version uint64) (*transact.Changeset, bool, error) {
	var data []byte
	err := l.db.QueryRow(`SELECT data FROM changesets WHERE version = ?`, int64(version)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load changeset %d: %w", version, err)
	}
	return &transact.Changeset{Version: version, Data: data}, true, nil
}

func (l *sqliteLog) Versions() ([]uint64, error) {
	rows, err := l.db.Query(`SELECT version FROM changesets ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list changeset versions: %w", err)
	}
	defer rows.Close()

	var versions []uint64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, uint64(v))
	}
	return versions, rows.Err()
}

func (l *sqliteLog) Close() error { return l.db.Close() }
