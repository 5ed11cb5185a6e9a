// Package appwritestub はテスト用のインメモリAppwriteサーバーを提供する。
//
// ドキュメントのCRUD、equal/orderAsc/orderDesc クエリ、
// アカウント・セッション操作を httptest.Server 上で再現する。
// 任意のパスに固定のエラーを返させることもできる。
package appwritestub
