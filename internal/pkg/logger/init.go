package logger

import (
	"Inkwell/internal/api/config"
	"io"
	log "log/slog"
	"os"
	"strings"
)

var LogWriter io.Writer = os.Stdout

// InitLogger 初始化全局 slog，JSON 输出并附带 trace_id
func InitLogger() {
	level := parseLevel(config.Cfg.Log.Level)

	h := log.NewJSONHandler(LogWriter, &log.HandlerOptions{Level: level})
	log.SetDefault(log.New(&ContextHandler{h}))
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
