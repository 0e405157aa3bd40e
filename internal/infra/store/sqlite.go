package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// localStorage相当のkey/valueドキュメントストア。
// 値はJSON文字列で、キー単位の全置換だけを許す。
type SQLiteStore struct {
	db *sql.DB
}

// Open はファイルを開いて（無ければ作って）*SQLiteStore を返す。
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// 単一クライアントプロセス前提
	db.SetMaxOpenConns(1)

	const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(ctx context.Context, key string, out any) error {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

// ---- repository.CartStore ----

func (s *SQLiteStore) Load(ctx context.Context) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := s.get(ctx, repository.KeyCart, &lines)
	if errors.Is(err, repository.ErrNotFound) {
		return []model.CartLine{}, nil
	}
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *SQLiteStore) Save(ctx context.Context, lines []model.CartLine) error {
	if lines == nil {
		lines = []model.CartLine{}
	}
	return s.put(ctx, repository.KeyCart, lines)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.delete(ctx, repository.KeyCart)
}

// CartStoreとWishlistStoreを同じファイルで実装するとLoad/Saveが衝突するため、
// お気に入りはビュー型で分ける。
type WishlistView struct {
	s *SQLiteStore
}

func (s *SQLiteStore) Wishlist() *WishlistView {
	return &WishlistView{s: s}
}

func (w *WishlistView) Load(ctx context.Context) ([]model.WishlistEntry, error) {
	var entries []model.WishlistEntry
	err := w.s.get(ctx, repository.KeyWishlist, &entries)
	if errors.Is(err, repository.ErrNotFound) {
		return []model.WishlistEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (w *WishlistView) Save(ctx context.Context, entries []model.WishlistEntry) error {
	if entries == nil {
		entries = []model.WishlistEntry{}
	}
	return w.s.put(ctx, repository.KeyWishlist, entries)
}

func (w *WishlistView) Clear(ctx context.Context) error {
	return w.s.delete(ctx, repository.KeyWishlist)
}

// ---- repository.SessionStore ----

type SessionView struct {
	s *SQLiteStore
}

func (s *SQLiteStore) Session() *SessionView {
	return &SessionView{s: s}
}

func (v *SessionView) Token(ctx context.Context) (string, error) {
	var token string
	if err := v.s.get(ctx, repository.KeyToken, &token); err != nil {
		return "", err
	}
	return token, nil
}

func (v *SessionView) SaveToken(ctx context.Context, token string) error {
	return v.s.put(ctx, repository.KeyToken, token)
}

func (v *SessionView) User(ctx context.Context) (model.User, error) {
	var u model.User
	if err := v.s.get(ctx, repository.KeyUser, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (v *SessionView) SaveUser(ctx context.Context, u model.User) error {
	return v.s.put(ctx, repository.KeyUser, u)
}

func (v *SessionView) Clear(ctx context.Context) error {
	return v.s.delete(ctx, repository.KeyToken, repository.KeyUser)
}
