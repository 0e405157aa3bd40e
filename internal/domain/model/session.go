package model

type SessionState string

const (
	SessionUnknown  SessionState = "UNKNOWN" // 再検証が進行中
	SessionGuest    SessionState = "GUEST"
	SessionCustomer SessionState = "CUSTOMER"
	SessionAdmin    SessionState = "ADMIN"
)

// 端末側にキャッシュされたログイン状態。
// ログイン応答またはトークン再利用で生成し、期限切れ・401/403・明示ログアウトで破棄する。
type Session struct {
	State SessionState `json:"state"`
	Token string       `json:"token,omitempty"`
	User  *User        `json:"user,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.State == SessionCustomer || s.State == SessionAdmin
}

func (s Session) IsAdmin() bool {
	return s.State == SessionAdmin
}
