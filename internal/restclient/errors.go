package restclient

import (
	"errors"
	"fmt"
)

// 401/403。キャッシュ済みセッションは破棄済みで、呼び出し側はログインへ誘導する。
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: status=%d", e.Status)
}

// 431。Cookie退避とリトライを使い切った後に返す。
// 呼び出し側はローカルキャッシュのみで継続するか、ログインへ誘導する。
type HeaderOverflowError struct {
	Attempts int
}

func (e *HeaderOverflowError) Error() string {
	return fmt.Sprintf("request headers too large after %d attempts", e.Attempts)
}

// 404。カート/お気に入りではローカル動作へ降格する。
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.Path
}

// その他の4xx/5xx。Messageはサーバーの {"error": "..."} をそのまま持つ。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// 応答が無い（接続不可・タイムアウト）
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsHeaderOverflow(err error) bool {
	var he *HeaderOverflowError
	return errors.As(err, &he)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// ローカル動作へ降格してよい失敗か（カート/お気に入りの取得系で使う）
func Degradable(err error) bool {
	return IsHeaderOverflow(err) || IsNotFound(err) || IsNetworkError(err)
}
