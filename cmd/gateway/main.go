// gatewayサービスのエントリポイント。
// クライアントアプリからの認証・CRUDリクエストをAppwriteへ中継する。
// サービス自身はデータを持たず、リクエストごとにセッションを付けて転送する。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"github.com/VictorMH77/musicas-ippi-v2/internal/config"
	"github.com/VictorMH77/musicas-ippi-v2/internal/gateway"
	"github.com/VictorMH77/musicas-ippi-v2/pkg/logging"
)

func main() {
	cmd := &cli.Command{
		Name:  "gateway",
		Usage: "Appwriteへの認証・CRUDプロキシ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML設定ファイルのパス（省略時は既定値と環境変数のみ）",
				Sources: cli.EnvVars("GATEWAY_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "リッスンポート（PORTより優先）",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "ログレベル（LOG_LEVELより優先）",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logging.New(os.Stderr, "error").Error("gatewayサービスの起動に失敗", "err", err)
		os.Exit(1)
	}
}

// run は設定を読み込み、停止シグナルを受けるまでサーバーを動かす。
func run(ctx context.Context, cmd *cli.Command) error {
	var overrides []config.Override
	if cmd.IsSet("port") {
		port := cmd.String("port")
		overrides = append(overrides, func(c *config.Config) { c.Port = port })
	}
	if cmd.IsSet("log-level") {
		level := strings.ToLower(cmd.String("log-level"))
		overrides = append(overrides, func(c *config.Config) { c.LogLevel = level })
	}

	cfg, err := config.Load(cmd.String("config"), os.Getenv, overrides...)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if !cfg.APIKeyConfigured() {
		logger.Warn("APPWRITE_API_KEY が設定されていません。デプロイ前に環境変数を設定してください")
	}
	if cfg.UsesDefaultRecoveryURL() {
		logger.Warn("パスワード再設定リンクが開発用の既定値です", "url", cfg.RecoveryRedirectURL)
	}

	server := gateway.NewServer(cfg, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("gatewayサービスを起動します",
		"port", cfg.Port,
		"endpoint", cfg.Appwrite.Endpoint,
		"cors", cfg.CORSOrigins,
	)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("gatewayサービスの実行に失敗: %w", err)
	}
	logger.Info("gatewayサービスを停止しました")
	return nil
}
