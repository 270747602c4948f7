package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/taskdag/pkg/command"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/task"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id        INTEGER PRIMARY KEY,
	position  INTEGER NOT NULL,
	text      TEXT    NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS successors (
	task_id      INTEGER NOT NULL,
	successor_id INTEGER NOT NULL,
	position     INTEGER NOT NULL,
	PRIMARY KEY (task_id, successor_id)
);
CREATE TABLE IF NOT EXISTS focus (
	slot    INTEGER PRIMARY KEY CHECK (slot = 0),
	task_id INTEGER NOT NULL
);
`

// SQLiteStore keeps the task list in a SQLite database.
//
// Tasks are ordered by their position column and successors by theirs, so
// Load returns the list in the order it was written. Successor rows are not
// constrained to existing tasks; a dangling reference loads as-is and is
// reported by the graph builder.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.Default()
	}

	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "open database")
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "create schema")
	}
	logger.Debug("opened sqlite store", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Load returns all tasks ordered by position.
func (s *SQLiteStore) Load(ctx context.Context) ([]task.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, completed FROM tasks ORDER BY position, id`)
	if err != nil {
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "query tasks")
	}
	defer rows.Close()

	records := []task.Record{}
	index := make(map[int]int)
	for rows.Next() {
		var r task.Record
		if err := rows.Scan(&r.ID, &r.Text, &r.Completed); err != nil {
			return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "scan task")
		}
		r.SuccessorIDs = []int{}
		index[r.ID] = len(records)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "iterate tasks")
	}
	// Release the single connection before the next query.
	_ = rows.Close()

	srows, err := s.db.QueryContext(ctx,
		`SELECT task_id, successor_id FROM successors ORDER BY task_id, position`)
	if err != nil {
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "query successors")
	}
	defer srows.Close()
	for srows.Next() {
		var from, to int
		if err := srows.Scan(&from, &to); err != nil {
			return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "scan successor")
		}
		if i, ok := index[from]; ok {
			records[i].SuccessorIDs = append(records[i].SuccessorIDs, to)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "iterate successors")
	}
	return records, nil
}

// Apply executes cmd in a transaction.
func (s *SQLiteStore) Apply(ctx context.Context, cmd command.Command) error {
	if err := checkCommand(cmd); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	switch cmd.Kind {
	case command.KindFocusTask:
		if err := requireTask(ctx, tx, cmd.TaskID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO focus (slot, task_id) VALUES (0, ?)
			 ON CONFLICT(slot) DO UPDATE SET task_id = excluded.task_id`, cmd.TaskID)

	case command.KindAddDependency:
		if err := requireTask(ctx, tx, cmd.FromID); err != nil {
			return err
		}
		if err := requireTask(ctx, tx, cmd.ToID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO successors (task_id, successor_id, position)
			 SELECT ?, ?, COALESCE(MAX(position) + 1, 0) FROM successors WHERE task_id = ?`,
			cmd.FromID, cmd.ToID, cmd.FromID)

	case command.KindRemoveDependency:
		if err := requireTask(ctx, tx, cmd.FromID); err != nil {
			return err
		}
		if err := requireTask(ctx, tx, cmd.ToID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM successors WHERE task_id = ? AND successor_id = ?`, cmd.FromID, cmd.ToID)
	}
	if err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "apply %s", cmd)
	}
	if err := tx.Commit(); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "commit")
	}
	s.logger.Debug("applied command", "command", cmd.String())
	return nil
}

func requireTask(ctx context.Context, tx *sql.Tx, id int) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return notFound(id)
	}
	if err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "look up task %d", id)
	}
	return nil
}

// Focus returns the focused task id.
func (s *SQLiteStore) Focus(ctx context.Context) (int, bool, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `SELECT task_id FROM focus WHERE slot = 0`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "query focus")
	}
	return id, true, nil
}

// Replace deletes all rows and inserts records in order.
func (s *SQLiteStore) Replace(ctx context.Context, records []task.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM successors`, `DELETE FROM tasks`, `DELETE FROM focus`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "clear tables")
		}
	}
	for pos, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (id, position, text, completed) VALUES (?, ?, ?, ?)`,
			r.ID, pos, r.Text, r.Completed); err != nil {
			return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "insert task %d", r.ID)
		}
		for spos, succ := range r.SuccessorIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO successors (task_id, successor_id, position) VALUES (?, ?, ?)`,
				r.ID, succ, spos); err != nil {
				return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "insert successor %d -> %d", r.ID, succ)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "commit")
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
