package appwrite

import "fmt"

// Error はAppwriteが返すエラーレスポンス。
type Error struct {
	// Message は人間向けのエラーメッセージ。
	Message string `json:"message"`
	// Code はHTTPステータスコード。
	Code int `json:"code"`
	// Type は "user_invalid_credentials" のようなエラー種別。
	Type string `json:"type"`
	// Version はエラーを返したサーバーのバージョン。
	Version string `json:"version"`
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("appwrite: %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("appwrite: %d %s: %s", e.Code, e.Type, e.Message)
}

// requireParams は必須パラメータが空でないことを確認する。
// リクエストを送る前に検出したエラーなのでCodeは0のまま返す。
func requireParams(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return &Error{Message: fmt.Sprintf("Missing required parameter: %q", pairs[i])}
		}
	}
	return nil
}
