// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// セッショントークンの取り出し、リクエストログ、パニックリカバリ、
// CORS設定など、gatewayサービスで共通して使用するミドルウェアを含む。
package middleware
