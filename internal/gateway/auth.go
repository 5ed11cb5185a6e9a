package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VictorMH77/musicas-ippi-v2/pkg/appwrite"
	"github.com/VictorMH77/musicas-ippi-v2/pkg/middleware"
)

// credentialsRequest は登録・ログインのリクエストボディ。
type credentialsRequest struct {
	// Email はメールアドレス。
	Email string `json:"email"`
	// Password はパスワード。
	Password string `json:"password"`
	// Name は表示名。登録時のみ使用する。
	Name string `json:"name"`
}

// logoutRequest はログアウトのリクエストボディ。
type logoutRequest struct {
	// SessionID は無効化するセッションのID。
	SessionID string `json:"sessionId"`
}

// recoveryRequest はパスワード再設定のリクエストボディ。
type recoveryRequest struct {
	// Email は再設定メールの宛先。
	Email string `json:"email"`
	// RedirectURL はメール内リンクの遷移先。省略時は設定値を使う。
	RedirectURL string `json:"redirectUrl"`
}

// handleRegister はアカウントを作成し、続けてセッションを作成するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := bindJSONBody(c, &req); err != nil {
			respondBadBody(c, err)
			return
		}

		account := s.adminClient().Account()
		user, err := account.Create(c.Request.Context(), appwrite.UniqueID(), req.Email, req.Password, req.Name)
		if err != nil {
			s.respondError(c, err)
			return
		}

		session, err := account.CreateEmailPasswordSession(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user, "session": session})
	}
}

// handleLogin はメールアドレスとパスワードでセッションを作成するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := bindJSONBody(c, &req); err != nil {
			respondBadBody(c, err)
			return
		}

		session, err := s.adminClient().Account().CreateEmailPasswordSession(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"session": session})
	}
}

// handleLogout はセッションを無効化するハンドラを返す。
// セッションヘッダーがあればそのユーザーとして、無ければAPIキーで削除する。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req logoutRequest
		if err := bindJSONBody(c, &req); err != nil {
			respondBadBody(c, err)
			return
		}

		client := s.adminClient()
		if token := c.GetHeader(middleware.HeaderSessionToken); token != "" {
			client = s.newClient(appwrite.WithSession(token))
		}

		if err := client.Account().DeleteSession(c.Request.Context(), req.SessionID); err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleGetCurrentUser はセッションのユーザー情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.sessionClient(c).Account().Get(c.Request.Context())
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// handleRecovery はパスワード再設定メールを送信するハンドラを返す。
func (s *Server) handleRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req recoveryRequest
		if err := bindJSONBody(c, &req); err != nil {
			respondBadBody(c, err)
			return
		}

		redirectURL := req.RedirectURL
		if redirectURL == "" {
			redirectURL = s.cfg.RecoveryRedirectURL
		}

		if err := s.adminClient().Account().CreateRecovery(c.Request.Context(), req.Email, redirectURL); err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
