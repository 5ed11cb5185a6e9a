package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// DefaultRecoveryRedirectURL はパスワード再設定メールのリンク先の既定値。
// ローカル開発用のアドレスなので、本番では RECOVERY_REDIRECT_URL を設定すること。
const DefaultRecoveryRedirectURL = "http://localhost:3000/reset-password"

// Config はgatewayサービスの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `toml:"port"`
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string `toml:"log_level"`
	// CORSOrigins はクロスオリジンを許可するオリジン。"*" で全て許可する。
	CORSOrigins []string `toml:"cors_origins"`
	// RecoveryRedirectURL はパスワード再設定リンクの既定の遷移先。
	RecoveryRedirectURL string `toml:"recovery_redirect_url"`
	// Appwrite はバックエンドへの接続設定。
	Appwrite AppwriteConfig `toml:"appwrite"`
}

// AppwriteConfig はAppwriteへの接続設定。
type AppwriteConfig struct {
	Endpoint   string `toml:"endpoint"`
	ProjectID  string `toml:"project_id"`
	APIKey     string `toml:"api_key"`
	DatabaseID string `toml:"database_id"`
	// Collections はコレクションID。
	Collections Collections `toml:"collections"`
}

// Collections は各リソースが保存されるコレクションのID。
type Collections struct {
	Musicas         string `toml:"musicas"`
	Playlists       string `toml:"playlists"`
	PlaylistMusicas string `toml:"playlist_musicas"`
}

// Default は既定値の設定を返す。
func Default() *Config {
	return &Config{
		Port:                "3001",
		LogLevel:            "info",
		CORSOrigins:         []string{"*"},
		RecoveryRedirectURL: DefaultRecoveryRedirectURL,
		Appwrite: AppwriteConfig{
			Endpoint:   "https://cloud.appwrite.io/v1",
			ProjectID:  "692ef75c002bbb970dbe",
			DatabaseID: "igreja_musicas",
			Collections: Collections{
				Musicas:         "musicas",
				Playlists:       "playlists",
				PlaylistMusicas: "playlist_musicas",
			},
		},
	}
}

// Override は環境変数の後に適用する上書き処理。コマンドラインフラグに使う。
type Override func(*Config)

// Load は既定値にTOMLファイル、環境変数、overridesの順で重ねた設定を返す。
// 検証は全ての上書きを適用した後に一度だけ行う。
// pathが空の場合はファイルを読まない。getenvがnilの場合はos.Getenvを使う。
func Load(path string, getenv func(string) string, overrides ...Override) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.applyEnv(getenv)
	for _, o := range overrides {
		o(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}
	return cfg, nil
}

// applyEnv は設定されている環境変数で値を上書きする。
func (c *Config) applyEnv(getenv func(string) string) {
	setIfPresent := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setIfPresent(&c.Port, "PORT")
	setIfPresent(&c.LogLevel, "LOG_LEVEL")
	c.LogLevel = strings.ToLower(c.LogLevel)
	setIfPresent(&c.RecoveryRedirectURL, "RECOVERY_REDIRECT_URL")
	setIfPresent(&c.Appwrite.Endpoint, "APPWRITE_ENDPOINT")
	setIfPresent(&c.Appwrite.ProjectID, "APPWRITE_PROJECT_ID")
	setIfPresent(&c.Appwrite.APIKey, "APPWRITE_API_KEY")
	setIfPresent(&c.Appwrite.DatabaseID, "APPWRITE_DATABASE_ID")

	if v := getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
}

// Validate は設定値を検証する。APIキーは未設定でも起動できる。
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.CORSOrigins, validation.Required),
		validation.Field(&c.RecoveryRedirectURL, validation.Required, is.URL),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Appwrite,
		validation.Field(&c.Appwrite.Endpoint, validation.Required, is.URL),
		validation.Field(&c.Appwrite.ProjectID, validation.Required),
		validation.Field(&c.Appwrite.DatabaseID, validation.Required),
		validation.Field(&c.Appwrite.Collections),
	)
}

// Validate はコレクションIDが全て設定されていることを検証する。
func (c Collections) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Musicas, validation.Required),
		validation.Field(&c.Playlists, validation.Required),
		validation.Field(&c.PlaylistMusicas, validation.Required),
	)
}

// APIKeyConfigured はAppwriteのAPIキーが設定されているかを返す。
func (c *Config) APIKeyConfigured() bool {
	return c.Appwrite.APIKey != ""
}

// UsesDefaultRecoveryURL は再設定リンクが開発用の既定値のままかを返す。
func (c *Config) UsesDefaultRecoveryURL() bool {
	return c.RecoveryRedirectURL == DefaultRecoveryRedirectURL
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
