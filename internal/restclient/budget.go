package restclient

import (
	"encoding/json"
	"net/http"
	"strings"
)

// 肥大化しやすい既知のCookie名接頭辞。予防的退避の対象。
var evictPrefixes = []string{
	"_ga",
	"_gid",
	"_gat",
	"_fbp",
	"_hj",
	"amp_",
	"ajs_",
	"intercom-",
}

func hasEvictPrefix(name string) bool {
	for _, p := range evictPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// cookieHeaderSize は送信されるCookieヘッダのバイト数。
func cookieHeaderSize(cookies []*http.Cookie) int {
	n := 0
	for i, c := range cookies {
		if i > 0 {
			n += 2 // "; "
		}
		n += len(c.Name) + 1 + len(c.Value)
	}
	return n
}

// headerBudgetSize はヘッダをJSON直列化した長さ＋Cookie文字列長。
// 送信前に必ずこの値を上限と比較する。
func headerBudgetSize(h http.Header, cookies []*http.Cookie) int {
	serialized, err := json.Marshal(h)
	if err != nil {
		serialized = nil
	}
	return len(serialized) + cookieHeaderSize(cookies)
}
