package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Store — шлюз персистентности поверх SQLite.
// Хранит профили вакансий, записи интервью и накопленный расход пользователя.
type Store struct {
	db *sql.DB
}

// Open открывает базу и накатывает схему
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	// SQLite переносит только одно соединение на запись
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS job_profile (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	skills TEXT NOT NULL DEFAULT '[]',
	years_experience INTEGER NOT NULL DEFAULT 0,
	resume_text TEXT NOT NULL DEFAULT '',
	created_ts INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS interview_record (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	job_profile_id TEXT NOT NULL,
	level INTEGER NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	voice_agent_id TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	score INTEGER,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	responses TEXT NOT NULL DEFAULT '[]',
	created_ts INTEGER NOT NULL,
	completed_ts INTEGER
);

CREATE INDEX IF NOT EXISTS idx_interview_record_user ON interview_record (user_id);

CREATE TABLE IF NOT EXISTS profile_usage (
	user_id TEXT PRIMARY KEY,
	plan_id TEXT NOT NULL DEFAULT '',
	tokens_used INTEGER NOT NULL DEFAULT 0,
	interviews_completed INTEGER NOT NULL DEFAULT 0,
	updated_ts INTEGER NOT NULL
);
`

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}
