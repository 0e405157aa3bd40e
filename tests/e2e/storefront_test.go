package e2e

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	"storefront/internal/mockapi"
	"storefront/internal/restclient"
	"storefront/internal/usecase"
)

func Test_GuestCart_SurvivesLoginAndMergesToServer(t *testing.T) {
	h := newHarness(t, mockapi.Options{})
	ctx := context.Background()

	products := h.mock.SeedProducts(
		model.Product{Name: "Drip Mug", Price: 12.5, Stock: 5},
		model.Product{Name: "Canvas Tote", Price: 30, Stock: 3},
	)
	h.mock.SeedUser("Taro", "taro@example.com", "password123", model.RoleUser)

	// 未ログインで追加
	if _, err := h.carts.Add(ctx, products[0], 2); err != nil {
		t.Fatalf("guest add failed: %v", err)
	}

	sess, err := h.sessions.Login(ctx, "taro@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !sess.Authenticated() {
		t.Fatalf("expected authenticated session, got %s", sess.State)
	}

	// ログイン後の突合でゲスト分がサーバーへ昇格する
	lines, err := h.carts.Reconcile(ctx)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != products[0].ID {
		t.Fatalf("unexpected merged cart: %+v", lines)
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", lines[0].Quantity)
	}

	remote, err := h.cartAPI.Get(ctx)
	if err != nil {
		t.Fatalf("server cart fetch failed: %v", err)
	}
	if len(remote) != 1 || remote[0].ProductID != products[0].ID {
		t.Fatalf("server cart not synced: %+v", remote)
	}
}

func Test_Checkout_WithCoupon_ClearsCart(t *testing.T) {
	h := newHarness(t, mockapi.Options{})
	ctx := context.Background()

	products := h.mock.SeedProducts(model.Product{Name: "Drip Mug", Price: 100, Stock: 10})
	h.mock.SeedUser("Taro", "taro@example.com", "password123", model.RoleUser)
	h.mock.SeedCoupon("WELCOME10", 10, time.Now().Add(24*time.Hour))

	if _, err := h.sessions.Login(ctx, "taro@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := h.carts.Add(ctx, products[0], 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	order, err := h.checkout.PlaceOrder(ctx, usecase.PlaceOrderInput{
		Address:    "1-2-3 Shibuya, Tokyo",
		CouponCode: "WELCOME10",
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if order.Total != 180 {
		t.Fatalf("order total = %v, want 180 after 10%% coupon", order.Total)
	}
	if order.Status != model.OrderStatusPending {
		t.Fatalf("order status = %s, want pending", order.Status)
	}

	lines, err := h.carts.Lines(ctx)
	if err != nil {
		t.Fatalf("cart load failed: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("cart not cleared after order: %+v", lines)
	}

	history, err := h.checkout.History(ctx)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != order.ID {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func Test_OversizedCookies_RecoveredBy431Retry(t *testing.T) {
	h := newHarness(t, mockapi.Options{MaxCookieBytes: 64})
	ctx := context.Background()

	h.mock.SeedProducts(model.Product{Name: "Drip Mug", Price: 12.5, Stock: 5})

	// 接頭辞退避では消えないCookieで、サーバー側の上限だけを超えさせる
	h.client.SetCookies(h.srvURL, []*http.Cookie{
		{Name: "legacy_prefs", Value: strings.Repeat("x", 200)},
	})

	out, err := h.catalog.ListProducts(ctx, api.ListProductsQuery{})
	if err != nil {
		t.Fatalf("list products should recover after eviction, got: %v", err)
	}
	if len(out.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(out.Items))
	}
	if got := h.client.Cookies(h.srvURL); len(got) != 0 {
		t.Fatalf("cookies should be fully evicted, still have %d", len(got))
	}
}

func Test_AdminEndpoints_RejectCustomerAndDropSession(t *testing.T) {
	h := newHarness(t, mockapi.Options{})
	ctx := context.Background()

	h.mock.SeedUser("Taro", "taro@example.com", "password123", model.RoleUser)
	if _, err := h.sessions.Login(ctx, "taro@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	_, err := h.admin.Counts(ctx)
	if !restclient.IsAuthError(err) {
		t.Fatalf("expected auth error for customer, got: %v", err)
	}

	// 403でキャッシュ済みセッションも破棄される
	if sess := h.sessions.Current(ctx); sess.State != model.SessionGuest {
		t.Fatalf("session state = %s, want GUEST", sess.State)
	}
}

func Test_Wishlist_MergeAfterLogin(t *testing.T) {
	h := newHarness(t, mockapi.Options{})
	ctx := context.Background()

	products := h.mock.SeedProducts(
		model.Product{Name: "Drip Mug", Price: 12.5, Stock: 5},
	)
	h.mock.SeedUser("Taro", "taro@example.com", "password123", model.RoleUser)

	if _, err := h.wishes.Add(ctx, products[0]); err != nil {
		t.Fatalf("guest wishlist add failed: %v", err)
	}
	if _, err := h.sessions.Login(ctx, "taro@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	entries, err := h.wishes.Reconcile(ctx)
	if err != nil {
		t.Fatalf("wishlist reconcile failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ProductID != products[0].ID {
		t.Fatalf("unexpected wishlist: %+v", entries)
	}
	if entries[0].Dirty {
		t.Fatalf("entry should be synced, still dirty")
	}
}

func Test_Logout_ReturnsToGuestAndKeepsLocalCart(t *testing.T) {
	h := newHarness(t, mockapi.Options{})
	ctx := context.Background()

	products := h.mock.SeedProducts(model.Product{Name: "Drip Mug", Price: 12.5, Stock: 5})
	h.mock.SeedUser("Taro", "taro@example.com", "password123", model.RoleUser)

	if _, err := h.sessions.Login(ctx, "taro@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := h.carts.Add(ctx, products[0], 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := h.sessions.Logout(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if sess := h.sessions.Current(ctx); sess.State != model.SessionGuest {
		t.Fatalf("session state = %s, want GUEST", sess.State)
	}

	// ログアウトはセッションだけを消し、端末のカートは残す
	lines, err := h.carts.Lines(ctx)
	if err != nil {
		t.Fatalf("cart load failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("local cart should survive logout, got %d lines", len(lines))
	}
}
