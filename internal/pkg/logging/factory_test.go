package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Defaults(t *testing.T) {
	logger := NewLogger(Config{})
	require.NotNil(t, logger)

	_, ok := logger.(*SlogAdapter)
	assert.True(t, ok, "NewLogger должен возвращать *SlogAdapter")
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{Format: FormatText, Level: LevelInfo}, &buf)

	logger.Debug("отладка рассылки")
	logger.Info("алерт отправлен", "channel", "slack")

	out := buf.String()
	assert.NotContains(t, out, "отладка рассылки", "debug должен фильтроваться при level=info")
	assert.Contains(t, out, "алерт отправлен")
	assert.Contains(t, out, "slack")
}

func TestNewLoggerWithWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{Format: FormatJSON, Level: LevelDebug}, &buf)

	logger.With("dispatch_id", "d-1").Error("ошибка доставки", "channel", "telegram", "attempts", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "вывод должен быть валидным JSON")
	assert.Equal(t, "ошибка доставки", entry["msg"])
	assert.Equal(t, "telegram", entry["channel"])
	assert.Equal(t, "d-1", entry["dispatch_id"])
	assert.Equal(t, float64(3), entry["attempts"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run("level_"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apk-alert.log")
	logger := NewLogger(Config{
		Output:   OutputFile,
		FilePath: path,
		Format:   FormatJSON,
		Level:    LevelInfo,
	})

	logger.Info("рассылка завершена", "report_id", "run-42")

	data, err := os.ReadFile(path)
	require.NoError(t, err, "файл логов должен быть создан")
	assert.Contains(t, string(data), "run-42")
}

func TestNewLogger_FileOutput_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "apk-alert.log")
	logger := NewLogger(Config{Output: OutputFile, FilePath: path})

	logger.Info("проверка директории")

	_, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err, "директория логов должна создаваться автоматически")
}

func TestNewRotatingWriter_EmptyFilePath(t *testing.T) {
	w := newRotatingWriter(Config{Output: OutputFile})
	assert.Equal(t, os.Stderr, w, "пустой filePath должен деградировать в stderr")
}

func TestNewLogger_UnknownOutput_FallsBackToStderr(t *testing.T) {
	logger := NewLogger(Config{Output: "syslog"})
	require.NotNil(t, logger)

	_, ok := logger.(*SlogAdapter)
	assert.True(t, ok)
}

func TestNewLoggerWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{Format: FormatText}, &buf)

	logger.Warn("канал не сконфигурирован", "channel", "email")

	line := buf.String()
	assert.True(t, strings.Contains(line, "level=WARN"), "text формат должен содержать уровень: %s", line)
	assert.Contains(t, line, "channel=email")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, OutputStderr, cfg.Output)
	assert.Equal(t, "/var/log/apk-alert.log", cfg.FilePath)
	assert.True(t, cfg.Compress)
}
