package wire

import (
	"Inkwell/internal/api"
	"Inkwell/internal/api/config"
	"Inkwell/internal/api/handler"
	"Inkwell/internal/job"
	"Inkwell/internal/pkg/cron"
	"Inkwell/internal/pkg/kafka"
	"Inkwell/internal/pkg/ledger"
	"Inkwell/internal/pkg/mongo"
	"Inkwell/internal/repository"
	"Inkwell/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
}

// Services 业务层实例，HTTP 与后台任务共用
type Services struct {
	Notification service.NotificationService
	Reaction     service.ReactionService
	Comment      service.CommentService
	Report       service.ReportService
	Social       service.SocialService
}

// BuildServices 组装仓储层与业务层
func BuildServices(db *gorm.DB, mongoConn *mongoDB.Database, cfg *config.Config) *Services {
	userRepo := repository.NewUserRepo(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepo(db)
	reactionRepo := repository.NewReactionRepo(db, ledger.NewGormCounterStore())
	reportRepo := repository.NewReportRepo(db)
	userFollowRepo := repository.NewUserFollowRepo(db)
	notificationRepo := mongo.NewNotificationRepo(mongoConn)

	notificationSvc := service.NewNotificationService(notificationRepo, userRepo)
	reactionSvc := service.NewReactionService(reactionRepo, notificationSvc, time.Duration(cfg.Cache.ReactionStatsTTL)*time.Second)

	return &Services{
		Notification: notificationSvc,
		Reaction:     reactionSvc,
		Comment:      service.NewCommentService(commentRepo, postRepo, userRepo, reactionSvc, notificationSvc),
		Report:       service.NewReportService(reportRepo, postRepo, commentRepo, userRepo, notificationSvc),
		Social:       service.NewSocialService(userFollowRepo, userRepo, postRepo, notificationSvc),
	}
}

// BuildHandlers 组装 HTTP 处理器
func BuildHandlers(svc *Services) *api.HandlersGroup {
	return &api.HandlersGroup{
		ReactionHandler:     handler.NewReactionHandler(svc.Reaction),
		CommentHandler:      handler.NewCommentHandler(svc.Comment),
		ReportHandler:       handler.NewReportHandler(svc.Report),
		NotificationHandler: handler.NewNotificationHandler(svc.Notification),
		SocialHandler:       handler.NewSocialHandler(svc.Social),
		WsHandler:           handler.NewWsHandler(),
	}
}

func BuildApplication(db *gorm.DB, mongoConn *mongoDB.Database, cfg *config.Config) (*ApplicationContainer, error) {
	svc := BuildServices(db, mongoConn, cfg)
	router := api.SetupRouter(BuildHandlers(svc))

	cronMgr := cron.NewCronManager(cfg.Jobs.ReactionReconcile, job.NewReactionReconcileJob(svc.Reaction))

	kafkaMgr, err := kafka.NewConsumerManager(cfg, svc.Social)
	if err != nil {
		return nil, err
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
	}, nil
}
