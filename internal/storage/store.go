// Package storage — SQLite-репозитории сущностей и атомарный счётчик
// round-robin. Все репозитории доступны и вне транзакции (Store), и внутри
// неё (InTx): методы определены на общем исполнителе запросов.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// dbtx — общий знаменатель *sql.DB и *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store — корневой доступ к БД
type Store struct {
	db *sql.DB
	queries
}

type queries struct {
	q dbtx
}

// Open открывает (или создаёт) базу и применяет схему.
// Путь ":memory:" даёт БД в памяти с общим кэшем: её видят все соединения
// пула и все Store, открытые с ":memory:" в том же процессе.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	if path == ":memory:" {
		// Один общий in-memory инстанс на все соединения пула
		dsn = "file::memory:?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, queries: queries{q: db}}, nil
}

// Close закрывает пул соединений
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx выполняет fn в одной транзакции: либо фиксируются все изменения
// (продвижение счётчика, запись назначения, инкремент нагрузки), либо
// никакие.
func (s *Store) InTx(ctx context.Context, fn func(Repository) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	tx := &Tx{queries{q: sqlTx}}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Tx — те же репозитории внутри открытой транзакции
type Tx struct {
	queries
}
