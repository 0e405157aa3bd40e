package usecase

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/restclient"
)

// 認証APIへの約束
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
	Register(ctx context.Context, in api.RegisterRequest) (model.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (model.User, error)
}

// SessionUsecase はキャッシュ済みログイン状態の生成・再検証・破棄を担う。
// 状態遷移はログイン・ログアウト・再検証完了・期限切れ検知の4つだけ。
type SessionUsecase struct {
	store repository.SessionStore
	users AuthAPI
	clock Clock
	log   *slog.Logger
}

func NewSessionUsecase(store repository.SessionStore, users AuthAPI, clock Clock, log *slog.Logger) *SessionUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &SessionUsecase{
		store: store,
		users: users,
		clock: clock,
		log:   log,
	}
}

// Current はキャッシュだけでセッション状態を判定する。ネットワークは使わない。
// 期限切れトークンはその場で破棄してguest扱いにする。
func (u *SessionUsecase) Current(ctx context.Context) model.Session {
	token, err := u.store.Token(ctx)
	if err != nil || token == "" {
		return model.Session{State: model.SessionGuest}
	}

	if restclient.TokenExpired(token, u.clock.Now()) {
		u.log.Info("cached token expired, treating as guest")
		if err := u.store.Clear(ctx); err != nil {
			u.log.Warn("failed to clear expired session", "err", err)
		}
		return model.Session{State: model.SessionGuest}
	}

	sess := model.Session{State: model.SessionCustomer, Token: token}

	if user, err := u.store.User(ctx); err == nil {
		sess.User = &user
		if user.Role == model.RoleAdmin {
			sess.State = model.SessionAdmin
		}
		return sess
	}

	// userキャッシュが無い場合はトークンのrole claimで仮判定
	if restclient.TokenRole(token) == string(model.RoleAdmin) {
		sess.State = model.SessionAdmin
	}
	return sess
}

// Revalidate は/users/meでキャッシュを背景検証する。
// 401/403ならguestへ落とし、通信断やヘッダ超過ならキャッシュを信じて続行する。
func (u *SessionUsecase) Revalidate(ctx context.Context) (model.Session, error) {
	sess := u.Current(ctx)
	if !sess.Authenticated() {
		return sess, nil
	}

	user, err := u.users.Me(ctx)
	if err != nil {
		if restclient.IsAuthError(err) {
			// clientが既にキャッシュを破棄している
			return model.Session{State: model.SessionGuest}, nil
		}
		if restclient.Degradable(err) {
			u.log.Warn("session revalidation unavailable, keeping cached session", "err", err)
			return sess, nil
		}
		return sess, err
	}

	if err := u.store.SaveUser(ctx, user); err != nil {
		u.log.Warn("failed to cache revalidated user", "err", err)
	}

	sess.User = &user
	if user.Role == model.RoleAdmin {
		sess.State = model.SessionAdmin
	} else {
		sess.State = model.SessionCustomer
	}
	return sess, nil
}

// Login はログインしてtokenとuserをキャッシュする。
func (u *SessionUsecase) Login(ctx context.Context, email, password string) (model.Session, error) {
	out, err := u.users.Login(ctx, email, password)
	if err != nil {
		return model.Session{State: model.SessionGuest}, err
	}

	if err := u.store.SaveToken(ctx, out.Token); err != nil {
		return model.Session{State: model.SessionGuest}, err
	}
	if err := u.store.SaveUser(ctx, out.User); err != nil {
		u.log.Warn("failed to cache user after login", "err", err)
	}

	state := model.SessionCustomer
	if out.User.Role == model.RoleAdmin {
		state = model.SessionAdmin
	}
	return model.Session{State: state, Token: out.Token, User: &out.User}, nil
}

// Register は会員登録。成功してもログイン状態にはしない。
func (u *SessionUsecase) Register(ctx context.Context, name, email, password string) (model.User, error) {
	return u.users.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password})
}

// Logout はサーバー通知をベストエフォートで行い、キャッシュは必ず破棄する。
func (u *SessionUsecase) Logout(ctx context.Context) error {
	if u.Current(ctx).Authenticated() {
		if err := u.users.Logout(ctx); err != nil && !restclient.IsAuthError(err) {
			u.log.Warn("remote logout failed", "err", err)
		}
	}
	if err := u.store.Clear(ctx); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}
