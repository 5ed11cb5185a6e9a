package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VictorMH77/musicas-ippi-v2/pkg/appwrite"
	"github.com/VictorMH77/musicas-ippi-v2/pkg/middleware"
)

// newClient はAppwriteクライアントを生成する。
// 呼び出しごとに新しいハンドルを返し、キャッシュしない。
func (s *Server) newClient(opts ...appwrite.Option) *appwrite.Client {
	cfg := appwrite.Config{
		Endpoint:  s.cfg.Appwrite.Endpoint,
		ProjectID: s.cfg.Appwrite.ProjectID,
	}
	return appwrite.New(cfg, append([]appwrite.Option{appwrite.WithHTTPClient(s.httpClient)}, opts...)...)
}

// adminClient はAPIキーで認証するクライアントを返す。
func (s *Server) adminClient() *appwrite.Client {
	return s.newClient(appwrite.WithKey(s.cfg.Appwrite.APIKey))
}

// sessionClient はリクエストのセッショントークンで認証するクライアントを返す。
// RequireSessionミドルウェアの後で呼ぶこと。
func (s *Server) sessionClient(c *gin.Context) *appwrite.Client {
	return s.newClient(appwrite.WithSession(middleware.SessionToken(c)))
}

// respondError はバックエンドのエラーをHTTPレスポンスに変換する。
// Appwriteのエラーはステータスコード・メッセージ・種別をそのまま返し、
// それ以外のエラーは500にする。
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	if apiErr, ok := appwrite.AsError(err); ok {
		if apiErr.Code >= 400 && apiErr.Code <= 599 {
			status = apiErr.Code
		}
		body = gin.H{"error": apiErr.Message}
		if apiErr.Type != "" {
			body["type"] = apiErr.Type
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("バックエンド呼び出しに失敗", "method", c.Request.Method, "path", c.FullPath(), "status", status, "err", err)
	} else {
		s.logger.Debug("バックエンドがエラーを返しました", "method", c.Request.Method, "path", c.FullPath(), "status", status, "err", err)
	}
	c.JSON(status, body)
}

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 100 << 10

// errInvalidJSON はリクエストボディがJSONとして解釈できないことを表す。
var errInvalidJSON = errors.New("invalid JSON request body")

// respondBadBody は読み取れなかったリクエストボディへのレスポンスを返す。
// 上限サイズを超えた場合は413、それ以外は400にする。
func respondBadBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "Request body too large",
			"type":  "general_argument_invalid",
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "Invalid JSON request body",
		"type":  "general_argument_invalid",
	})
}

// readJSONBody はリクエストボディをJSONとしてそのまま読み取る。
// 空のボディは {} として扱う。
func readJSONBody(c *gin.Context) (json.RawMessage, error) {
	if c.Request.Body == nil {
		return json.RawMessage("{}"), nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, errInvalidJSON
	}
	return json.RawMessage(raw), nil
}

// bindJSONBody はリクエストボディをdstにデコードする。
func bindJSONBody(c *gin.Context, dst any) error {
	raw, err := readJSONBody(c)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errInvalidJSON
	}
	return nil
}
