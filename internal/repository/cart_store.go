package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// ローカル保存キー（ブラウザのlocalStorageに相当）
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyUser     = "user"
	KeyToken    = "token"
)

// カートのローカル永続化だけを約束。
// 書き込みは常に全置換（部分マージはしない）。
type CartStore interface {
	Load(ctx context.Context) ([]model.CartLine, error)
	Save(ctx context.Context, lines []model.CartLine) error
	Clear(ctx context.Context) error
}
