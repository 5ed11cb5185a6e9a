package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("指定したレベル以上のログだけが出力されること", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(&buf, "warn")
		logger.Info("表示されない")
		logger.Warn("表示される", "key", "value")

		out := buf.String()
		assert.NotContains(t, out, "表示されない")
		assert.Contains(t, out, "表示される")
		assert.Contains(t, out, "key=value")
	})

	t.Run("不正なレベルの場合はinfoになること", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(&buf, "verbose")
		logger.Debug("debugは出ない")
		logger.Info("infoは出る")

		out := buf.String()
		assert.NotContains(t, out, "debugは出ない")
		assert.Contains(t, out, "infoは出る")
	})

	t.Run("大文字や空白を含むレベルも解釈されること", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(&buf, " DEBUG ")
		logger.Debug("debugが出る")

		assert.Contains(t, buf.String(), "debugが出る")
	})
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	logger := Discard()
	assert.NotPanics(t, func() { logger.Error("捨てられる") })
}
