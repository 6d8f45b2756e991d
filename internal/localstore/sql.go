package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"hikayat/internal/models"
)

type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Profile(id string) Profile {
	return &sqlProfile{sqlLocal: sqlLocal{ext: s.db, profileID: id, now: s.now}, store: s}
}

func (s *SQLStore) Stats(ctx context.Context) (models.StorageStats, error) {
	var stats models.StorageStats

	err := s.db.GetContext(ctx, &stats, `
		SELECT COUNT(DISTINCT profile_id) AS profiles, COUNT(*) AS items
		FROM local_storage
	`)
	if err != nil {
		return models.StorageStats{}, fmt.Errorf("ошибка при подсчёте записей хранилища: %w", err)
	}

	return stats, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type sqlLocal struct {
	ext       sqlx.ExtContext
	profileID string
	now       func() time.Time
}

func (l *sqlLocal) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	var value string

	query := l.ext.Rebind(`SELECT item_value FROM local_storage WHERE profile_id = ? AND item_key = ?`)

	err := sqlx.GetContext(ctx, l.ext, &value, query, l.profileID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("ошибка при чтении ключа %s: %w", key, err)
	}

	return []byte(value), true, nil
}

func (l *sqlLocal) SetItem(ctx context.Context, key string, value []byte) error {
	query := l.ext.Rebind(`
		INSERT INTO local_storage (profile_id, item_key, item_value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (profile_id, item_key)
		DO UPDATE SET item_value = excluded.item_value, updated_at = excluded.updated_at
	`)

	_, err := l.ext.ExecContext(ctx, query, l.profileID, key, string(value), l.now().UTC())
	if err != nil {
		return fmt.Errorf("ошибка при записи ключа %s: %w", key, err)
	}

	return nil
}

func (l *sqlLocal) RemoveItem(ctx context.Context, key string) error {
	query := l.ext.Rebind(`DELETE FROM local_storage WHERE profile_id = ? AND item_key = ?`)

	_, err := l.ext.ExecContext(ctx, query, l.profileID, key)
	if err != nil {
		return fmt.Errorf("ошибка при удалении ключа %s: %w", key, err)
	}

	return nil
}

type sqlProfile struct {
	sqlLocal
	store *SQLStore
}

func (p *sqlProfile) ID() string {
	return p.profileID
}

func (p *sqlProfile) Atomic(ctx context.Context, fn func(tx Local) error) error {
	tx, err := p.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}

	view := &sqlTx{sqlLocal: sqlLocal{ext: tx, profileID: p.profileID, now: p.now}}
	if err := fn(view); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("ошибка при откате транзакции: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	for _, fn := range view.afterCommit {
		fn()
	}
	return nil
}

type sqlTx struct {
	sqlLocal
	afterCommit []func()
}

func (t *sqlTx) AfterCommit(fn func()) {
	t.afterCommit = append(t.afterCommit, fn)
}
