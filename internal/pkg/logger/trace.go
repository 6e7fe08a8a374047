package logger

import (
	"context"
	log "log/slog"
)

// Context 中的 Key
const (
	TraceIDKey = "trace_id"
	UserIDKey  = "user_id"
)

// ContextHandler 包装器，用于从 ctx 中提取 trace_id
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
		if userID, ok := ctx.Value(UserIDKey).(uint64); ok && userID > 0 {
			r.AddAttrs(log.Uint64(UserIDKey, userID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// WithTraceID 为后台任务构造带 trace_id 的 context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithUserID 记录当前请求的用户，日志中一并输出
func WithUserID(ctx context.Context, userID uint64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
