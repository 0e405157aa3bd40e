package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zalando/go-keyring"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// OSのキーリングにtokenだけを退避するSessionStore。
// キーリングが使えない環境（ヘッドレスCI等）では内側のストアへフォールバックする。
type KeyringSessionStore struct {
	inner   repository.SessionStore
	service string
	account string
	log     *slog.Logger
}

func NewKeyringSessionStore(inner repository.SessionStore, service string, log *slog.Logger) *KeyringSessionStore {
	if log == nil {
		log = slog.Default()
	}
	return &KeyringSessionStore{
		inner:   inner,
		service: service,
		account: "access_token",
		log:     log,
	}
}

func (k *KeyringSessionStore) Token(ctx context.Context) (string, error) {
	token, err := keyring.Get(k.service, k.account)
	if err == nil {
		return token, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", repository.ErrNotFound
	}
	k.log.Warn("keyring unavailable, falling back to local store", "err", err)
	return k.inner.Token(ctx)
}

func (k *KeyringSessionStore) SaveToken(ctx context.Context, token string) error {
	if err := keyring.Set(k.service, k.account, token); err != nil {
		k.log.Warn("keyring unavailable, falling back to local store", "err", err)
		return k.inner.SaveToken(ctx, token)
	}
	return nil
}

func (k *KeyringSessionStore) User(ctx context.Context) (model.User, error) {
	return k.inner.User(ctx)
}

func (k *KeyringSessionStore) SaveUser(ctx context.Context, u model.User) error {
	return k.inner.SaveUser(ctx, u)
}

func (k *KeyringSessionStore) Clear(ctx context.Context) error {
	if err := keyring.Delete(k.service, k.account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		k.log.Warn("keyring delete failed", "err", err)
	}
	return k.inner.Clear(ctx)
}
