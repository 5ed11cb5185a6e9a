// Package gateway はAppwriteへのAPIプロキシの内部実装を提供する。
//
// クライアントアプリからの認証・CRUDリクエストを受け取り、リクエストごとに
// セッションに束縛したAppwriteクライアントを生成して1回だけ呼び出し、
// 結果またはエラーをそのまま返す。サービス自身は状態を持たない。
package gateway
