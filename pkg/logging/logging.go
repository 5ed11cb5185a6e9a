// Package logging はサービス共通の構造化ロガーを生成する。
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New はタイムスタンプ付きの構造化ロガーを生成する。
// wがnilの場合は標準エラー出力に書き込む。levelが解釈できない場合はinfoになる。
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	})
}

// Discard は何も出力しないロガーを返す。テスト用。
func Discard() *log.Logger {
	return log.New(io.Discard)
}
