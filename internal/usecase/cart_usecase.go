package usecase

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/restclient"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrStockExceeded   = errors.New("stock exceeded")
	ErrNotInCart       = errors.New("not in cart")
)

// サーバー側カートへの約束（usecaseが使う分だけ）
type CartAPI interface {
	Get(ctx context.Context) ([]model.CartLine, error)
	Add(ctx context.Context, productID string, quantity int64) ([]model.CartLine, error)
	Update(ctx context.Context, productID string, quantity int64) ([]model.CartLine, error)
	Remove(ctx context.Context, productID string) ([]model.CartLine, error)
	Clear(ctx context.Context) error
	Sync(ctx context.Context, lines []model.CartLine) ([]model.CartLine, error)
}

// CartUsecase はローカルカートとサーバーカートの突合を担う。
// ローカルストアのcartキーへの書き込みはここだけが行う。
// 変更は常にローカル先行（楽観更新）で、リモート失敗は警告に降格する。
type CartUsecase struct {
	store   repository.CartStore
	session repository.SessionStore
	api     CartAPI
	idGen   IDGenerator
	clock   Clock
	log     *slog.Logger
}

func NewCartUsecase(
	store repository.CartStore,
	session repository.SessionStore,
	api CartAPI,
	idGen IDGenerator,
	clock Clock,
	log *slog.Logger,
) *CartUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &CartUsecase{
		store:   store,
		session: session,
		api:     api,
		idGen:   idGen,
		clock:   clock,
		log:     log,
	}
}

// 有効なトークンがあるか。期限切れはネットワークを使わずに判定する。
func (u *CartUsecase) authenticated(ctx context.Context) bool {
	token, err := u.session.Token(ctx)
	if err != nil || token == "" {
		return false
	}
	return !restclient.TokenExpired(token, u.clock.Now())
}

// Reconcile はローカルとサーバーのカートを1本に突合して永続化する。
//  1. 未ログインならローカルがそのまま正。サーバーは呼ばない。
//  2. 取得失敗がヘッダ超過・404・通信断ならローカルのみで継続（警告）。
//  3. サーバー行が常に優先。ローカルだけの行はlocal-接頭辞を除いて残し、
//     残した行はベストエフォートでまとめて同期する。
//  4. 結果はローカルへ全置換で保存する。
func (u *CartUsecase) Reconcile(ctx context.Context) ([]model.CartLine, error) {
	local, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	local = normalizeCartLines(local)

	if !u.authenticated(ctx) {
		return local, nil
	}

	remote, err := u.api.Get(ctx)
	if err != nil {
		if restclient.Degradable(err) || restclient.IsAuthError(err) {
			u.log.Warn("cart fetch failed, falling back to local cart", "err", err)
			return local, nil
		}
		return nil, err
	}

	merged, toSync := mergeCartLines(local, remote)

	if len(toSync) > 0 {
		synced, err := u.api.Sync(ctx, toSync)
		if err != nil {
			// 同期失敗は突合を止めない。次回のReconcileで再送する。
			u.log.Warn("cart sync failed, lines stay local-only", "count", len(toSync), "err", err)
			merged = markDirty(merged, toSync)
		} else {
			merged, _ = mergeCartLines(merged, synced)
		}
	}

	if err := u.store.Save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Add はカートへ追加する（同一商品は数量加算、在庫上限あり）。
func (u *CartUsecase) Add(ctx context.Context, p model.Product, quantity int64) ([]model.CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	local, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var existing int64
	for _, l := range local {
		if l.ProductID == p.ID {
			existing = l.Quantity
			break
		}
	}
	newQty := existing + quantity
	if p.Stock > 0 && newQty > p.Stock {
		return nil, ErrStockExceeded
	}

	line := model.CartLine{
		ProductID:       p.ID,
		Name:            p.Name,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Quantity:        newQty,
		Stock:           p.Stock,
		Images:          p.Images,
	}
	local = upsertLine(local, line)

	if err := u.store.Save(ctx, local); err != nil {
		return nil, err
	}

	u.pushMutation(ctx, p.ID, func() ([]model.CartLine, error) {
		return u.api.Add(ctx, p.ID, quantity)
	})

	return u.store.Load(ctx)
}

// AddCustom はオフラインで作る端末限定の行。local-接頭辞が付き、同期対象外。
func (u *CartUsecase) AddCustom(ctx context.Context, name string, price float64, quantity int64) ([]model.CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	local, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	local = upsertLine(local, model.CartLine{
		ProductID: model.LocalIDPrefix + u.idGen.NewID(),
		Name:      name,
		Price:     price,
		Quantity:  quantity,
	})

	if err := u.store.Save(ctx, local); err != nil {
		return nil, err
	}
	return local, nil
}

// UpdateQuantity は数量変更（1以上、在庫上限あり）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, productID string, quantity int64) ([]model.CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	local, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	for i, l := range local {
		if l.ProductID != productID {
			continue
		}
		if l.Stock > 0 && quantity > l.Stock {
			return nil, ErrStockExceeded
		}
		local[i].Quantity = quantity
		found = true
		break
	}
	if !found {
		return nil, ErrNotInCart
	}

	if err := u.store.Save(ctx, local); err != nil {
		return nil, err
	}

	u.pushMutation(ctx, productID, func() ([]model.CartLine, error) {
		return u.api.Update(ctx, productID, quantity)
	})

	return u.store.Load(ctx)
}

// Remove は行を削除する。
func (u *CartUsecase) Remove(ctx context.Context, productID string) ([]model.CartLine, error) {
	local, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := local[:0]
	found := false
	for _, l := range local {
		if l.ProductID == productID {
			found = true
			continue
		}
		out = append(out, l)
	}
	if !found {
		return nil, ErrNotInCart
	}

	if err := u.store.Save(ctx, out); err != nil {
		return nil, err
	}

	if u.authenticated(ctx) && !isLocalID(productID) {
		if _, err := u.api.Remove(ctx, productID); err != nil {
			u.log.Warn("remote cart remove failed", "productId", productID, "err", err)
		}
	}

	return u.store.Load(ctx)
}

// Clear は全行を削除する。
func (u *CartUsecase) Clear(ctx context.Context) error {
	if err := u.store.Clear(ctx); err != nil {
		return err
	}
	if u.authenticated(ctx) {
		if err := u.api.Clear(ctx); err != nil {
			u.log.Warn("remote cart clear failed", "err", err)
		}
	}
	return nil
}

// Lines は現在のローカルカートを返す。
func (u *CartUsecase) Lines(ctx context.Context) ([]model.CartLine, error) {
	lines, err := u.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return normalizeCartLines(lines), nil
}

// pushMutation は楽観更新の後段。リモート成功時はサーバー応答を
// ローカルへ映し、失敗時はdirtyを立てて次回Reconcileに回す。
func (u *CartUsecase) pushMutation(ctx context.Context, productID string, call func() ([]model.CartLine, error)) {
	if !u.authenticated(ctx) || isLocalID(productID) {
		return
	}

	remote, err := call()
	if err != nil {
		u.log.Warn("remote cart mutation failed, keeping local state", "productId", productID, "err", err)
		local, loadErr := u.store.Load(ctx)
		if loadErr != nil {
			return
		}
		for i := range local {
			if local[i].ProductID == productID {
				local[i].Dirty = true
			}
		}
		if saveErr := u.store.Save(ctx, local); saveErr != nil {
			u.log.Warn("failed to mark cart line dirty", "err", saveErr)
		}
		return
	}

	local, loadErr := u.store.Load(ctx)
	if loadErr != nil {
		return
	}
	merged, _ := mergeCartLines(local, remote)
	if err := u.store.Save(ctx, merged); err != nil {
		u.log.Warn("failed to mirror server cart locally", "err", err)
	}
}

// CartTotal は実売価格×数量の合計。
func CartTotal(lines []model.CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.UnitPrice() * float64(l.Quantity)
	}
	return total
}
