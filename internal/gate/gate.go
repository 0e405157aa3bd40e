package gate

import (
	"strings"

	"storefront/internal/domain/model"
)

// 画面遷移のパス。
const (
	PathLogin    = "/login"
	PathPayment  = "/payment"
	PathCart     = "/ShoppingCart"
	PathWishlist = "/wishlist"
	PathCheckout = "/checkout"
	PathProfile  = "/profile"
	PathOrders   = "/orders"
	PathAdmin    = "/admin"
)

type Action int

const (
	Render   Action = iota // そのまま表示
	Loading                // 再検証中。リダイレクトせず待つ
	Redirect               // Targetへ遷移
)

// ナビゲーション1回分の判定結果。
type Decision struct {
	Action  Action
	Target  string
	Warning string
	// ログイン後に戻る元パス
	From string
	// ローカルカートのスナップショットを持ってログインへ行くか
	PreserveCart bool
}

// Decide は(パス, セッション, ローカルカート件数)から遷移可否を決める純関数。
// 規則は優先順：
//  1. 決済は要ログイン（未ログインは元パスを保持してログインへ）
//  2. 再検証中はリダイレクトせずローディング
//  3. カートとお気に入りは未ログインでも常に許可
//  4. チェックアウトはカートが空ならカートへ戻す（ログイン状態に関係なく）
//  5. その他の保護パスは要ログイン。カートを引き継いでログインへ
//  6. adminがprofileを開いたらadminへ
func Decide(path string, sess model.Session, localCartLen int) Decision {
	if path == PathPayment {
		if sess.Authenticated() {
			return Decision{Action: Render}
		}
		if sess.State == model.SessionUnknown {
			return Decision{Action: Loading}
		}
		return Decision{Action: Redirect, Target: PathLogin, From: path}
	}

	if sess.State == model.SessionUnknown {
		return Decision{Action: Loading}
	}

	if path == PathCart || path == PathWishlist {
		return Decision{Action: Render}
	}

	if path == PathCheckout {
		if localCartLen == 0 {
			return Decision{Action: Redirect, Target: PathCart, Warning: "cart is empty"}
		}
		return Decision{Action: Render}
	}

	if path == PathProfile && sess.IsAdmin() {
		return Decision{Action: Redirect, Target: PathAdmin}
	}

	if strings.HasPrefix(path, PathAdmin) {
		if !sess.Authenticated() {
			return Decision{Action: Redirect, Target: PathLogin, From: path, PreserveCart: true}
		}
		if !sess.IsAdmin() {
			return Decision{Action: Redirect, Target: PathProfile, Warning: "admin only"}
		}
		return Decision{Action: Render}
	}

	if isProtected(path) && !sess.Authenticated() {
		return Decision{Action: Redirect, Target: PathLogin, From: path, PreserveCart: true}
	}

	return Decision{Action: Render}
}

// 要ログインのパスか（公開カタログ・カート・お気に入り以外の会員画面）
func isProtected(path string) bool {
	return path == PathProfile || strings.HasPrefix(path, PathOrders)
}
