package usecase

import (
	"context"
	"log/slog"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/restclient"
)

// サーバー側お気に入りへの約束
type WishlistAPI interface {
	Get(ctx context.Context) ([]model.WishlistEntry, error)
	Add(ctx context.Context, productID string) ([]model.WishlistEntry, error)
	Remove(ctx context.Context, productID string) ([]model.WishlistEntry, error)
}

// WishlistUsecase はお気に入りの突合と更新を担う。
// カートと同じ規則だが数量が無く、重複しない集合として扱う。
type WishlistUsecase struct {
	store   repository.WishlistStore
	session repository.SessionStore
	api     WishlistAPI
	clock   Clock
	log     *slog.Logger
}

func NewWishlistUsecase(
	store repository.WishlistStore,
	session repository.SessionStore,
	api WishlistAPI,
	clock Clock,
	log *slog.Logger,
) *WishlistUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &WishlistUsecase{
		store:   store,
		session: session,
		api:     api,
		clock:   clock,
		log:     log,
	}
}

func (u *WishlistUsecase) authenticated(ctx context.Context) bool {
	token, err := u.session.Token(ctx)
	if err != nil || token == "" {
		return false
	}
	return !restclient.TokenExpired(token, u.clock.Now())
}

// Reconcile はカートと同じ突合規則（サーバー優先・local-除外・全置換保存）。
func (u *WishlistUsecase) Reconcile(ctx context.Context) ([]model.WishlistEntry, error) {
	local, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	local = normalizeWishlist(local)

	if !u.authenticated(ctx) {
		return local, nil
	}

	remote, err := u.api.Get(ctx)
	if err != nil {
		if restclient.Degradable(err) || restclient.IsAuthError(err) {
			u.log.Warn("wishlist fetch failed, falling back to local wishlist", "err", err)
			return local, nil
		}
		return nil, err
	}

	merged, toSync := mergeWishlist(local, remote)

	for _, e := range toSync {
		if _, err := u.api.Add(ctx, e.ProductID); err != nil {
			u.log.Warn("wishlist sync failed", "productId", e.ProductID, "err", err)
			for i := range merged {
				if merged[i].ProductID == e.ProductID {
					merged[i].Dirty = true
				}
			}
		}
	}

	if err := u.store.Save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Add は追加（既にあれば何もしない）。
func (u *WishlistUsecase) Add(ctx context.Context, p model.Product) ([]model.WishlistEntry, error) {
	local, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	for _, e := range local {
		if e.ProductID == p.ID {
			return local, nil
		}
	}

	local = append(local, model.WishlistEntry{
		ProductID:       p.ID,
		Name:            p.Name,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Stock:           p.Stock,
		Images:          p.Images,
	})

	if err := u.store.Save(ctx, local); err != nil {
		return nil, err
	}

	if u.authenticated(ctx) && !isLocalID(p.ID) {
		if _, err := u.api.Add(ctx, p.ID); err != nil {
			u.log.Warn("remote wishlist add failed", "productId", p.ID, "err", err)
		}
	}

	return local, nil
}

// Remove は削除。無ければ何もしない（集合なので冪等）。
func (u *WishlistUsecase) Remove(ctx context.Context, productID string) ([]model.WishlistEntry, error) {
	local, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := local[:0]
	removed := false
	for _, e := range local {
		if e.ProductID == productID {
			removed = true
			continue
		}
		out = append(out, e)
	}

	if err := u.store.Save(ctx, out); err != nil {
		return nil, err
	}

	if removed && u.authenticated(ctx) && !isLocalID(productID) {
		if _, err := u.api.Remove(ctx, productID); err != nil {
			u.log.Warn("remote wishlist remove failed", "productId", productID, "err", err)
		}
	}

	return out, nil
}

// Toggle は有無を反転して、反転後に含まれているかを返す。
func (u *WishlistUsecase) Toggle(ctx context.Context, p model.Product) (bool, error) {
	local, err := u.store.Load(ctx)
	if err != nil {
		return false, err
	}

	for _, e := range local {
		if e.ProductID == p.ID {
			_, err := u.Remove(ctx, p.ID)
			return false, err
		}
	}

	_, err = u.Add(ctx, p)
	return true, err
}

func (u *WishlistUsecase) Entries(ctx context.Context) ([]model.WishlistEntry, error) {
	entries, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return normalizeWishlist(entries), nil
}
