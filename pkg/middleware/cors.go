package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// allowedHeaders はクロスオリジンで許可するリクエストヘッダー。
	allowedHeaders = "Authorization, Content-Type, " + HeaderSessionToken
	// allowedMethods はクロスオリジンで許可するメソッド。
	allowedMethods = "GET, HEAD, PUT, PATCH, POST, DELETE, OPTIONS"
)

// CORS は指定されたオリジンからのクロスオリジンリクエストを許可するGinミドルウェアを返す。
// "*" を含む場合は全てのオリジンと、プリフライトで要求された全てのヘッダーを許可する。
// 資格情報付きのリクエストに対応するため、ワイルドカードではなくリクエストのOriginをそのまま返す。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	originsSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		originsSet[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, ok := originsSet[origin]
		if origin != "" && (allowAll || ok) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", allowedMethods)
			headers := allowedHeaders
			// 全オリジン許可の場合はプリフライトで要求されたヘッダーをそのまま許可する
			if requested := c.GetHeader("Access-Control-Request-Headers"); allowAll && requested != "" {
				headers = requested
				c.Writer.Header().Add("Vary", "Access-Control-Request-Headers")
			}
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", "86400")
			c.Writer.Header().Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
