package restclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired はネットワークを使わずにJWTのexpだけを見る。
// 署名検証はしない（検証はサーバーの仕事）。壊れたトークンは期限切れ扱い。
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return exp.Time.Before(now)
}

// TokenRole はJWTのrole claimを返す（無ければ空）。
func TokenRole(token string) string {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}
