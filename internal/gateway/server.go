package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/VictorMH77/musicas-ippi-v2/internal/config"
	"github.com/VictorMH77/musicas-ippi-v2/pkg/appwrite"
	"github.com/VictorMH77/musicas-ippi-v2/pkg/middleware"
)

// shutdownTimeout は停止シグナル受信後に処理中のリクエストを待つ時間。
const shutdownTimeout = 10 * time.Second

// Server はgatewayサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg は起動時に読み込んだ設定。リクエスト間で変更しない。
	cfg *config.Config
	// logger は構造化ロガー。
	logger *log.Logger
	// httpClient はAppwriteへの通信に使うHTTPクライアント。
	// コネクションは共有するが、認証情報を持つappwrite.Clientは共有しない。
	httpClient *http.Client
}

// NewServer は新しいgatewayサーバーを生成する。
func NewServer(cfg *config.Config, logger *log.Logger) *Server {
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	s := &Server{
		router:     router,
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{},
	}
	s.setupRoutes()

	return s
}

// Handler はルーティング済みのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされたら停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("サーバーの停止に失敗: %w", err)
		}
		return nil
	}
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（/user 以外はセッション不要）
	auth := s.router.Group("/api/auth")
	{
		auth.POST("/register", s.handleRegister())
		auth.POST("/login", s.handleLogin())
		auth.POST("/logout", s.handleLogout())
		auth.GET("/user", middleware.RequireSession(), s.handleGetCurrentUser())
		auth.POST("/recovery", s.handleRecovery())
	}

	// セッション必須のリソースエンドポイント
	api := s.router.Group("/api")
	api.Use(middleware.RequireSession())
	{
		cols := s.cfg.Appwrite.Collections

		// 楽曲
		api.GET("/musicas", s.handleListDocuments(cols.Musicas))
		api.POST("/musicas", s.handleCreateDocument(cols.Musicas))
		api.PUT("/musicas/:id", s.handleUpdateDocument(cols.Musicas))
		api.DELETE("/musicas/:id", s.handleDeleteDocument(cols.Musicas))

		// プレイリスト（新しい順）
		api.GET("/playlists", s.handleListDocuments(cols.Playlists, appwrite.OrderDesc("$createdAt")))
		api.POST("/playlists", s.handleCreateDocument(cols.Playlists))
		api.GET("/playlists/:id", s.handleGetDocument(cols.Playlists))

		// プレイリスト内の楽曲（ordem の昇順）
		api.GET("/playlist-musicas/:playlistId", s.handleListPlaylistMusicas())
		api.POST("/playlist-musicas", s.handleCreateDocument(cols.PlaylistMusicas))
	}

	// ヘルスチェック。Appwriteには問い合わせない。
	s.router.GET("/health", s.handleHealth())
}

// handleHealth は稼働状況とAPIキーの設定有無を返すハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "não configurado"
		if s.cfg.APIKeyConfigured() {
			status = "configurado"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"message":  "API funcionando!",
			"appwrite": status,
		})
	}
}
