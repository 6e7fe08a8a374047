package api

import (
	"Inkwell/internal/api/middleware"
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware("/ping", "/metrics", "/notifications/ws"))
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"message": "pong",
			"data":    nil,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	postGroup := r.Group("/posts")
	{
		authOptGroup := postGroup.Group("")
		authOptGroup.Use(middleware.AuthOptionalMiddleware())
		{
			authOptGroup.GET("/:id/comments", group.CommentHandler.GetComments)
			authOptGroup.GET("/:id/reaction-stats", group.ReactionHandler.GetPostReactionStats)
			authOptGroup.GET("/comments/:commentId/reaction-stats", group.ReactionHandler.GetCommentReactionStats)
		}

		authGroup := postGroup.Group("")
		authGroup.Use(middleware.AuthMiddleware())
		{
			authGroup.POST("/:id/react", group.ReactionHandler.ReactPost)
			authGroup.POST("/:id/comments", group.CommentHandler.CreateComment)
			authGroup.POST("/:id/pin-comment", group.CommentHandler.PinComment)
			authGroup.DELETE("/:id/pin-comment", group.CommentHandler.UnpinComment)
			authGroup.POST("/:id/report", group.ReportHandler.ReportPost)
			authGroup.POST("/:id/share", group.SocialHandler.SharePost)

			authGroup.POST("/comments/:commentId/react", group.ReactionHandler.ReactComment)
			authGroup.POST("/comments/:commentId/report", group.ReportHandler.ReportComment)
			authGroup.DELETE("/comments/:commentId", group.CommentHandler.DeleteComment)
		}
	}

	userGroup := r.Group("/users")
	userGroup.Use(middleware.AuthMiddleware())
	{
		userGroup.POST("/:id/follow", group.SocialHandler.Follow)
		userGroup.DELETE("/:id/follow", group.SocialHandler.Unfollow)
	}

	notificationGroup := r.Group("/notifications")
	{
		// 鉴权在握手时完成
		notificationGroup.GET("/ws", group.WsHandler.Connect)

		authGroup := notificationGroup.Group("")
		authGroup.Use(middleware.AuthMiddleware())
		{
			authGroup.GET("", group.NotificationHandler.GetNotificationList)
			authGroup.GET("/unread-count", group.NotificationHandler.GetUnreadCount)
			authGroup.PUT("/read-all", group.NotificationHandler.MarkAllRead)
			authGroup.PUT("/:id/read", group.NotificationHandler.MarkRead)
			authGroup.DELETE("/:id", group.NotificationHandler.DeleteNotification)
		}
	}

	// 需要登录 & 拥有 admin 角色
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleAdmin))
	{
		adminGroup.GET("/reports", group.ReportHandler.ListReports)
		adminGroup.PUT("/reports/:id/approve", group.ReportHandler.ApproveReport)
		adminGroup.PUT("/reports/:id/reject", group.ReportHandler.RejectReport)
		adminGroup.PUT("/comments/:commentId/status", group.CommentHandler.SetCommentStatus)
		adminGroup.PUT("/users/:id/status", group.ReportHandler.SetUserStatus)
	}

	return r
}
