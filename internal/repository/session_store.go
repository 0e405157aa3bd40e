package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// キャッシュしたログイン状態（token / user）の永続化を約束。
// tokenが無ければErrNotFound。
type SessionStore interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	User(ctx context.Context) (model.User, error)
	SaveUser(ctx context.Context, u model.User) error
	// tokenとuserをまとめて破棄する（ログアウト・401/403・期限切れ）
	Clear(ctx context.Context) error
}
