// Package scores keeps finished runs in a SQLite database.
package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plus3/tetrs/internal/game"
	"github.com/plus3/tetrs/internal/scores/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	// ErrNoScores is returned by Best when nothing has been recorded.
	ErrNoScores = errors.New("no scores recorded")
	// ErrExists is returned when an entry id is already stored.
	ErrExists = errors.New("score already recorded")
)

// Entry is one recorded run.
type Entry struct {
	ID         uuid.UUID
	Player     string
	Score      int
	Lines      int
	Level      int
	StartLevel int
	Pieces     int
	Seed       uint64
	Duration   time.Duration
	PlayedAt   time.Time
}

// Store persists entries in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("score database path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores r for player under a new id.
func (s *Store) Record(ctx context.Context, player string, r game.Result) (Entry, error) {
	e := Entry{
		ID:         uuid.New(),
		Player:     player,
		Score:      r.Score,
		Lines:      r.Lines,
		Level:      r.Level,
		StartLevel: r.StartLevel,
		Pieces:     r.Pieces,
		Seed:       r.Seed,
		Duration:   r.Duration,
		PlayedAt:   s.now().UTC(),
	}
	return e, s.Insert(ctx, e)
}

// Insert stores e as is.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.Player) == "" {
		return fmt.Errorf("player is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (
		   id, player, score, lines, level, start_level, pieces, seed, duration_ms, played_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(),
		e.Player,
		e.Score,
		e.Lines,
		e.Level,
		e.StartLevel,
		e.Pieces,
		int64(e.Seed),
		e.Duration.Milliseconds(),
		e.PlayedAt.UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrExists
		}
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

const selectEntry = `SELECT id, player, score, lines, level, start_level, pieces, seed, duration_ms, played_at FROM scores`

// Top returns up to limit entries, best first. Equal scores keep the order
// they were played in.
func (s *Store) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, selectEntry+` ORDER BY score DESC, played_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return entries, nil
}

// Best returns the highest entry, or ErrNoScores.
func (s *Store) Best(ctx context.Context) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectEntry+` ORDER BY score DESC, played_at ASC LIMIT 1`)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNoScores
	}
	return e, err
}

// Count returns the number of recorded runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scores: %w", err)
	}
	return n, nil
}

// Sink records finished runs for player.
func (s *Store) Sink(player string) game.Sink {
	return game.SinkFunc(func(r game.Result) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := s.Record(ctx, player, r)
		return err
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                  Entry
		id                 string
		seed               int64
		duration, playedAt int64
	)
	err := row.Scan(&id, &e.Player, &e.Score, &e.Lines, &e.Level, &e.StartLevel,
		&e.Pieces, &seed, &duration, &playedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan score: %w", err)
	}
	if e.ID, err = uuid.Parse(id); err != nil {
		return Entry{}, fmt.Errorf("parse score id %q: %w", id, err)
	}
	e.Seed = uint64(seed)
	e.Duration = time.Duration(duration) * time.Millisecond
	e.PlayedAt = time.UnixMilli(playedAt).UTC()
	return e, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
