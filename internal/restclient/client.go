package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"storefront/internal/repository"
)

const (
	DefaultHeaderLimit = 2500 // 直列化ヘッダ＋Cookieの上限（byte）
	DefaultCookieLimit = 1500 // 接頭辞退避後もこれを超えたら全Cookieを捨てる
	defaultTimeout     = 10 * time.Second
)

type Options struct {
	HeaderLimit int
	CookieLimit int
	Retry       RetryPolicy
	Timeout     time.Duration
	Logger      *slog.Logger
	// テストで時刻を固定するため
	Now func() time.Time
}

// APIへの全リクエストが通る薄いラッパー。
// bearer付与・送信前のヘッダサイズ検査・応答の分類をここに集約し、
// 呼び出し側ごとの退避ロジックの重複をなくす。
type Client struct {
	baseURL     *url.URL
	httpc       *http.Client
	session     repository.SessionStore
	log         *slog.Logger
	headerLimit int
	cookieLimit int
	retry       RetryPolicy
	now         func() time.Time
}

func New(baseURL string, session repository.SessionStore, opt Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %s", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	if opt.HeaderLimit <= 0 {
		opt.HeaderLimit = DefaultHeaderLimit
	}
	if opt.CookieLimit <= 0 {
		opt.CookieLimit = DefaultCookieLimit
	}
	if opt.Retry.MaxRetries == 0 {
		opt.Retry = DefaultRetryPolicy()
	}
	if opt.Timeout <= 0 {
		opt.Timeout = defaultTimeout
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}

	return &Client{
		baseURL: u,
		httpc: &http.Client{
			Jar:     jar,
			Timeout: opt.Timeout,
		},
		session:     session,
		log:         opt.Logger,
		headerLimit: opt.HeaderLimit,
		cookieLimit: opt.CookieLimit,
		retry:       opt.Retry,
		now:         opt.Now,
	}, nil
}

// DoJSON はJSONボディのリクエストを送り、成功応答をoutへ格納する。
// outがnilなら応答ボディは捨てる。
func (c *Client) DoJSON(ctx context.Context, method, path string, body any, out any) error {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	return c.do(ctx, method, path, "application/json", raw, out)
}

// DoMultipart は画像アップロード等のmultipartリクエストを送る。
func (c *Client) DoMultipart(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	return c.do(ctx, method, path, contentType, body, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	reqURL := *c.baseURL
	reqURL.Path = strings.TrimRight(c.baseURL.Path, "/") + path

	headers, err := c.buildHeaders(ctx, contentType, body != nil)
	if err != nil {
		return err
	}

	// 送信前検査：上限を超えるなら先にCookieを退避し、それでも駄目なら送らない
	if err := c.preflight(&reqURL, headers); err != nil {
		return err
	}

	state := retryInitial
	for {
		req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header = headers.Clone()

		resp, err := c.httpc.Do(req)
		if err != nil {
			return &NetworkError{Err: err}
		}

		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusRequestHeaderFieldsTooLarge:
			// 1回目は接頭辞退避、2回目は全退避＋セッション破棄に強める
			if state == retryInitial {
				c.evictDenylist(&reqURL)
			} else {
				c.evictAll(ctx)
			}

			next, ok := c.retry.advance(state)
			state = next
			if !ok {
				c.log.Warn("header overflow persists after cookie eviction", "path", path)
				return &HeaderOverflowError{Attempts: state.attempts()}
			}
			continue

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			if err := c.session.Clear(ctx); err != nil {
				c.log.Warn("failed to clear cached session", "err", err)
			}
			return &AuthError{Status: resp.StatusCode}

		case resp.StatusCode == http.StatusNotFound:
			return &NotFoundError{Path: path}

		case resp.StatusCode >= 400:
			return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}

		default:
			if readErr != nil {
				return &NetworkError{Err: readErr}
			}
			if out == nil || len(data) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
	}
}

// buildHeaders は共通ヘッダとbearerを組み立てる。
// 期限切れトークンは付与せず、その場でキャッシュを破棄する。
func (c *Client) buildHeaders(ctx context.Context, contentType string, hasBody bool) (http.Header, error) {
	h := http.Header{}
	h.Set("Accept", "application/json")
	if hasBody && contentType != "" {
		h.Set("Content-Type", contentType)
	}

	token, err := c.session.Token(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if token != "" {
		if TokenExpired(token, c.now()) {
			c.log.Info("cached token expired, clearing session")
			if err := c.session.Clear(ctx); err != nil {
				c.log.Warn("failed to clear cached session", "err", err)
			}
		} else {
			h.Set("Authorization", "Bearer "+token)
		}
	}

	return h, nil
}

// preflight は直列化ヘッダ＋Cookieのサイズを上限と比較し、
// 超過時は退避してから送信に進む。退避は必ず送信前に行う。
func (c *Client) preflight(u *url.URL, headers http.Header) error {
	cookies := c.httpc.Jar.Cookies(u)
	if headerBudgetSize(headers, cookies) <= c.headerLimit {
		return nil
	}

	c.log.Warn("header budget exceeded, evicting known-oversized cookies",
		"size", headerBudgetSize(headers, cookies), "limit", c.headerLimit)
	c.evictDenylist(u)

	cookies = c.httpc.Jar.Cookies(u)
	if cookieHeaderSize(cookies) > c.cookieLimit {
		c.log.Warn("cookies still oversized, clearing all cookies and session",
			"cookieBytes", cookieHeaderSize(cookies), "limit", c.cookieLimit)
		c.evictAll(context.Background())
		cookies = nil
	}

	// 全退避後の再計算で1回だけ送信を許す。ヘッダ単体で超えるならここで打ち切る。
	if headerBudgetSize(headers, cookies) > c.headerLimit {
		return &HeaderOverflowError{Attempts: 0}
	}
	return nil
}

// 既知の肥大Cookieを名前接頭辞で削除する
func (c *Client) evictDenylist(u *url.URL) {
	for _, ck := range c.httpc.Jar.Cookies(u) {
		if !hasEvictPrefix(ck.Name) {
			continue
		}
		c.httpc.Jar.SetCookies(u, []*http.Cookie{{
			Name:   ck.Name,
			Value:  "",
			MaxAge: -1,
		}})
	}
}

// 全Cookieとキャッシュ済みセッションを捨てる
func (c *Client) evictAll(ctx context.Context) {
	if jar, err := cookiejar.New(nil); err == nil {
		c.httpc.Jar = jar
	}
	if err := c.session.Clear(ctx); err != nil {
		c.log.Warn("failed to clear cached session", "err", err)
	}
}

// Cookies は現在のjarの中身を返す（テスト用）。
func (c *Client) Cookies(u *url.URL) []*http.Cookie {
	return c.httpc.Jar.Cookies(u)
}

// SetCookies はjarへCookieを注入する（テスト用）。
func (c *Client) SetCookies(u *url.URL, cookies []*http.Cookie) {
	c.httpc.Jar.SetCookies(u, cookies)
}

func errorMessage(body []byte) string {
	var v struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &v); err == nil && v.Error != "" {
		return v.Error
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "request failed"
	}
	return msg
}
