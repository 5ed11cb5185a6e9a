// Package appwrite はAppwrite（ドキュメントDB＋認証）のREST APIを呼び出す最小限のクライアントを提供する。
//
// gatewayサービスが使用する Account / Databases の操作だけを実装する。
// クライアントはAPIキーまたはユーザーのセッションのどちらか一方に束縛され、
// セッションに束縛したクライアントはリクエストごとに生成して使い捨てる。
package appwrite
