package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// お気に入りのローカル永続化だけを約束。
type WishlistStore interface {
	Load(ctx context.Context) ([]model.WishlistEntry, error)
	Save(ctx context.Context, entries []model.WishlistEntry) error
	Clear(ctx context.Context) error
}
