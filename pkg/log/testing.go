package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
)

// TestLogger は構造化ログの出力をメモリに取り込み、
// テストから内容を検証できるようにするロガーです。
// 通常のロガーと同じJSONハンドラとスタックトレース抽出を経由するため、
// 本番と同じ形式のレコードが得られます。
type TestLogger struct {
	buffer *bytes.Buffer
	logger *slog.Logger
}

// NewTestLogger は指定レベル以上のレコードを取り込むTestLoggerを作成します。
//
// 使用例:
//
//	tl := log.NewTestLogger(slog.LevelInfo)
//	tl.Logger().Info("fit completed", log.ModelNameKey, "KMeans")
//	if !tl.ContainsField(log.ModelNameKey, "KMeans") {
//		t.Error("model name not logged")
//	}
func NewTestLogger(level slog.Level) *TestLogger {
	buffer := &bytes.Buffer{}
	handler := slog.NewJSONHandler(buffer, &slog.HandlerOptions{Level: level})
	return &TestLogger{
		buffer: buffer,
		logger: slog.New(WrapByErrFmtHandler(handler)),
	}
}

// Logger は取り込み先に接続されたslogロガーを返します。
func (t *TestLogger) Logger() *slog.Logger {
	return t.logger
}

// Entries は取り込んだJSONレコードをパースして返します。
func (t *TestLogger) Entries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(t.buffer.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage は指定した文字列を含むレコードが存在するかを返します。
func (t *TestLogger) ContainsMessage(message string) bool {
	return strings.Contains(t.buffer.String(), message)
}

// ContainsField は指定したキーと値の属性を持つレコードが存在するかを返します。
// JSON経由の数値はfloat64で比較されることに注意してください。
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.Entries()
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if v, ok := entry[key]; ok && v == value {
			return true
		}
	}
	return false
}
