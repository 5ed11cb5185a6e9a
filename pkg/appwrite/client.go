package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	headerProject  = "X-Appwrite-Project"
	headerKey      = "X-Appwrite-Key"
	headerSession  = "X-Appwrite-Session"
	headerResponse = "X-Appwrite-Response-Format"
	// responseFormat はクライアントが期待するレスポンス形式のバージョン。
	responseFormat = "1.6.0"
)

// Config はAppwriteプロジェクトへの接続情報。
type Config struct {
	// Endpoint はAPIのベースURL（例: "https://cloud.appwrite.io/v1"）。
	Endpoint string
	// ProjectID はAppwriteのプロジェクトID。
	ProjectID string
}

// Client はAppwrite REST APIのHTTPクライアント。
// APIキーまたはセッションのいずれかで認証する。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// endpoint は末尾スラッシュを除いたAPIのベースURL。
	endpoint string
	// projectID はAppwriteのプロジェクトID。
	projectID string
	// key はサーバー用APIキー。
	key string
	// session はユーザーのセッションシークレット。
	session string
}

// Option はClientの生成オプション。
type Option func(*Client)

// WithKey はサーバー用APIキーで認証するクライアントにする。
func WithKey(key string) Option {
	return func(c *Client) { c.key = key }
}

// WithSession はユーザーのセッションで認証するクライアントにする。
func WithSession(session string) Option {
	return func(c *Client) { c.session = session }
}

// WithHTTPClient は内部で使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New は新しいAppwriteクライアントを生成する。
// タイムアウトは設定しない。呼び出し側のcontextで打ち切る。
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		projectID:  cfg.ProjectID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Account はアカウント操作用のサービスを返す。
func (c *Client) Account() *Account {
	return &Account{client: c}
}

// Databases はドキュメント操作用のサービスを返す。
func (c *Client) Databases() *Databases {
	return &Databases{client: c}
}

// call はJSON形式のHTTPリクエストを実行する共通処理。
// 2xx以外のレスポンスは *Error として返す。
func (c *Client) call(ctx context.Context, method, path string, params url.Values, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	u := c.endpoint + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerProject, c.projectID)
	req.Header.Set(headerResponse, responseFormat)
	if c.key != "" {
		req.Header.Set(headerKey, c.key)
	}
	if c.session != "" {
		req.Header.Set(headerSession, c.session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := decodeJSON(respBody, result); err != nil {
		return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
	}
	return nil
}

// decodeJSON は数値をjson.Numberのまま保持してデコードする。2^53を超える整数も丸めない。
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// decodeError はエラーレスポンスを *Error に変換する。
// ボディがAppwriteのエラー形式でない場合もステータスコードは保持する。
func decodeError(status int, body []byte) error {
	apiErr := &Error{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	if apiErr.Code == 0 {
		apiErr.Code = status
	}
	return apiErr
}

// AsError はerrがAppwriteのエラーであれば取り出す。
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
