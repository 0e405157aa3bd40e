package restclient

// 431リトライの明示的な状態機械。
// リクエスト設定に_retryフラグを生やす代わりに、1リクエスト分の進行を型で持つ。
type retryState int

const (
	retryInitial retryState = iota
	retriedOnce
	retriedTwice
	retryFailed
)

// RetryPolicy は431に対する上限付きリトライ（バックオフ無し）。
type RetryPolicy struct {
	MaxRetries int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2}
}

// advance は次の状態と、もう1回試行してよいかを返す。
func (p RetryPolicy) advance(s retryState) (retryState, bool) {
	switch s {
	case retryInitial:
		if p.MaxRetries >= 1 {
			return retriedOnce, true
		}
	case retriedOnce:
		if p.MaxRetries >= 2 {
			return retriedTwice, true
		}
	}
	return retryFailed, false
}

func (s retryState) attempts() int {
	switch s {
	case retryInitial:
		return 0
	case retriedOnce:
		return 1
	default:
		return 2
	}
}
