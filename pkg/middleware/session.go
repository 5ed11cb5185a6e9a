package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderSessionToken はクライアントがAppwriteのセッションを渡すHTTPヘッダー。
const HeaderSessionToken = "X-Session-Token"

// contextKeySession はGinコンテキストにセッショントークンを格納するキー。
const contextKeySession = "session_token"

// ErrNoSessionToken はセッショントークンが無い場合のエラーメッセージ。
// クライアントアプリがこの文字列に依存しているため変更しないこと。
const ErrNoSessionToken = "No session token"

// RequireSession はセッショントークンの存在だけを確認するGinミドルウェアを返す。
// トークンの検証はAppwrite側で行う。
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderSessionToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrNoSessionToken,
			})
			return
		}
		c.Set(contextKeySession, token)
		c.Next()
	}
}

// SessionToken はGinコンテキストからセッショントークンを取得する。
// RequireSessionミドルウェアが事前に適用されている必要がある。
func SessionToken(c *gin.Context) string {
	token, _ := c.Get(contextKeySession)
	if s, ok := token.(string); ok {
		return s
	}
	return ""
}
