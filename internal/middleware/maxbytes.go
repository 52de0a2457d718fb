package middleware

import (
	"net/http"
)

// NewMaxBytesMiddleware はリクエストボディの読み取り上限を課すミドルウェアを返す。
// 上限を超えて読み取ろうとしたハンドラーには*http.MaxBytesErrorが返り、
// 接続はそれ以上のデータを受け付けない。
func NewMaxBytesMiddleware(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
