package appwrite

import "github.com/google/uuid"

// UniqueID は新しいユーザーやドキュメント用の一意なIDを生成する。
// UUIDは36文字以内かつ英数字で始まるため、AppwriteのID制約を満たす。
func UniqueID() string {
	return uuid.New().String()
}
