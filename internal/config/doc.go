// Package config はgatewayサービスの設定を読み込む。
//
// 既定値、TOMLファイル、環境変数の順に上書きし、最後に検証する。
// 既定値はAppwrite Cloud上の本番プロジェクトを指す。
package config
