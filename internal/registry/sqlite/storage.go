// Package sqlite is a local birthday registry for deployments without a
// spreadsheet. Rows keep the same (name, M/D/YYYY) contract as the sheet.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/engine"
)

// Storage implements engine.BirthdayRegistry.
type Storage struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path and applies the migrations.
func Open(path string) (*Storage, error) {
	db, err := sql.Open(config.SQLiteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSQLiteOpen, err)
	}
	// sqlite serializes writers; one connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(config.SQLiteMaxOpenConns)

	s, err := NewStorage(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStorage wraps an open database and applies the migrations.
func NewStorage(db *sql.DB) (*Storage, error) {
	s := &Storage{db: sqlx.NewDb(db, config.SQLiteDriverName)}
	if err := s.RunMigrations(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSQLiteMigrate, err)
	}
	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// ListBirthdays returns rows in insertion order, like a sheet read top to bottom.
func (s *Storage) ListBirthdays(ctx context.Context) ([]engine.BirthdayRecord, error) {
	var rows []Birthday
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, date, created_at
		FROM birthdays
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrListBirthdays, err)
	}

	res := make([]engine.BirthdayRecord, len(rows))
	for i, r := range rows {
		res[i] = r.Convert()
	}
	return res, nil
}

func (s *Storage) AddBirthday(ctx context.Context, rec engine.BirthdayRecord) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO birthdays (name, date) VALUES (:name, :date)
	`, NewBirthday(rec))
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrAddBirthday, err)
	}
	slog.DebugContext(ctx, config.MsgBirthdayAdded,
		config.LogKeyComponent, config.CompSQLite,
		config.LogKeyName, rec.Name,
	)
	return nil
}
