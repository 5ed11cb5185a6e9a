package appwrite

import (
	"context"
	"net/http"
	"net/url"
)

// User はAppwriteのユーザーアカウント。フィールドは加工せずにそのまま中継する。
type User map[string]any

// Session はAppwriteのセッション。
type Session map[string]any

// Account はアカウント関連のAPI。
type Account struct {
	client *Client
}

// Create は新しいユーザーアカウントを作成する。
func (a *Account) Create(ctx context.Context, userID, email, password, name string) (User, error) {
	if err := requireParams("userId", userID, "email", email, "password", password); err != nil {
		return nil, err
	}
	body := map[string]any{
		"userId":   userID,
		"email":    email,
		"password": password,
	}
	if name != "" {
		body["name"] = name
	}
	var user User
	if err := a.client.call(ctx, http.MethodPost, "/account", nil, body, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateEmailPasswordSession はメールアドレスとパスワードでセッションを作成する。
func (a *Account) CreateEmailPasswordSession(ctx context.Context, email, password string) (Session, error) {
	if err := requireParams("email", email, "password", password); err != nil {
		return nil, err
	}
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	var session Session
	if err := a.client.call(ctx, http.MethodPost, "/account/sessions/email", nil, body, &session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession はセッションを無効化する。sessionIDに "current" を渡すと現在のセッションを対象にする。
func (a *Account) DeleteSession(ctx context.Context, sessionID string) error {
	if err := requireParams("sessionId", sessionID); err != nil {
		return err
	}
	return a.client.call(ctx, http.MethodDelete, "/account/sessions/"+url.PathEscape(sessionID), nil, nil, nil)
}

// Get は現在認証されているユーザーを取得する。
func (a *Account) Get(ctx context.Context) (User, error) {
	var user User
	if err := a.client.call(ctx, http.MethodGet, "/account", nil, nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateRecovery はパスワード再設定メールを送信する。
// redirectURLはメール内のリンクの遷移先。
func (a *Account) CreateRecovery(ctx context.Context, email, redirectURL string) error {
	if err := requireParams("email", email, "url", redirectURL); err != nil {
		return err
	}
	body := map[string]any{
		"email": email,
		"url":   redirectURL,
	}
	return a.client.call(ctx, http.MethodPost, "/account/recovery", nil, body, nil)
}
