package api

import "Inkwell/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	ReactionHandler     *handler.ReactionHandler
	CommentHandler      *handler.CommentHandler
	ReportHandler       *handler.ReportHandler
	NotificationHandler *handler.NotificationHandler
	SocialHandler       *handler.SocialHandler
	WsHandler           *handler.WsHandler
}
