package service

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/model"
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/mongo"
	"Inkwell/internal/pkg/redis"
	"Inkwell/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

// 通知类型
const (
	NotifyReaction       = "reaction"
	NotifyComment        = "comment"
	NotifyReply          = "reply"
	NotifyReport         = "report"
	NotifyReportResolved = "report_resolved"
	NotifyReportRejected = "report_rejected"
	NotifyWarning        = "warning"
	NotifyAccountLocked  = "account_locked"
	NotifyFollow         = "follow"
	NotifyShare          = "share"
)

// NotifyParams 一次通知事件
type NotifyParams struct {
	RecipientID uint64
	SenderID    uint64 // 0 表示系统
	Type        string
	Message     string
	PostID      uint64
	TargetID    uint64
}

type NotificationService interface {
	Notify(ctx context.Context, p NotifyParams) bool
	NotifyMany(ctx context.Context, recipientIDs []uint64, p NotifyParams) int
	GetNotificationList(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.NotificationDTO, error)
	GetUnreadCount(ctx context.Context, userID uint64) (*dto.NotificationUnreadDTO, error)
	MarkRead(ctx context.Context, userID uint64, id string) error
	MarkAllRead(ctx context.Context, userID uint64) error
	DeleteNotification(ctx context.Context, userID uint64, id string) error
}

type notificationServiceImpl struct {
	notificationRepo mongo.NotificationRepo
	userRepo         repository.UserRepo
}

func NewNotificationService(notificationRepo mongo.NotificationRepo, userRepo repository.UserRepo) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

// Notify 写入一条通知；接收者即发起者时直接返回成功，写入失败只记录日志并返回 false
func (s *notificationServiceImpl) Notify(ctx context.Context, p NotifyParams) bool {
	if p.RecipientID == 0 || p.RecipientID == p.SenderID {
		notificationsProcessed.WithLabelValues(p.Type, "skipped").Inc()
		return true
	}

	msg := &mongo.NotificationModel{
		RecipientID: p.RecipientID,
		SenderID:    p.SenderID,
		Type:        p.Type,
		PostID:      p.PostID,
		TargetID:    p.TargetID,
		Message:     p.Message,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}
	if err := s.notificationRepo.CreateNotification(ctx, msg); err != nil {
		notificationsProcessed.WithLabelValues(p.Type, "failed").Inc()
		log.ErrorContext(ctx, "create notification error",
			"recipient_id", p.RecipientID,
			"type", p.Type,
			"err", err)
		return false
	}
	notificationsProcessed.WithLabelValues(p.Type, "success").Inc()

	s.push(ctx, msg)
	return true
}

// NotifyMany 向多个接收者发送同一事件，返回成功写入（含跳过）的数量
func (s *notificationServiceImpl) NotifyMany(ctx context.Context, recipientIDs []uint64, p NotifyParams) int {
	delivered := 0
	for _, id := range lo.Uniq(recipientIDs) {
		p.RecipientID = id
		if s.Notify(ctx, p) {
			delivered++
		}
	}
	return delivered
}

// push 通过 Redis 频道推送给在线的 WebSocket 连接，失败不影响通知本身
func (s *notificationServiceImpl) push(ctx context.Context, msg *mongo.NotificationModel) {
	if !redis.Enabled() {
		return
	}
	payload, err := json.Marshal(toNotificationDTO(msg))
	if err != nil {
		return
	}
	channel := consts.NotifyChannelPrefix + strconv.FormatUint(msg.RecipientID, 10)
	if err = redis.Publish(ctx, channel, payload); err != nil {
		log.WarnContext(ctx, "publish notification error", "channel", channel, "err", err)
	}
}

// GetNotificationList 获取通知列表并补全发送者信息
func (s *notificationServiceImpl) GetNotificationList(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.NotificationDTO, error) {
	limit := int64(pageSize)
	offset := int64((page - 1) * pageSize)

	list, err := s.notificationRepo.GetNotificationList(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	senderIDs := lo.Uniq(lo.FilterMap(list, func(m *mongo.NotificationModel, _ int) (uint64, bool) {
		return m.SenderID, m.SenderID > 0
	}))
	senders := map[uint64]*model.User{}
	if len(senderIDs) > 0 {
		users, err := s.userRepo.GetUserByIds(ctx, senderIDs)
		if err != nil {
			log.WarnContext(ctx, "load notification senders error", "err", err)
		} else {
			senders = lo.KeyBy(users, func(u *model.User) uint64 { return u.ID })
		}
	}

	res := make([]*dto.NotificationDTO, 0, len(list))
	for _, m := range list {
		d := toNotificationDTO(m)
		// SenderID 为 0 代表系统发送
		if m.SenderID == 0 {
			d.SenderName = "系统通知"
		} else if u, ok := senders[m.SenderID]; ok {
			d.SenderName = u.Nickname
			d.AvatarURL = u.AvatarURL
		}
		res = append(res, d)
	}
	return res, nil
}

// GetUnreadCount 获取未读数
func (s *notificationServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (*dto.NotificationUnreadDTO, error) {
	count, err := s.notificationRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationUnreadDTO{UnreadCount: count}, nil
}

// MarkRead 标记单条已读
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID uint64, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotificationNotFound
	}
	err = s.notificationRepo.MarkAsRead(ctx, userID, objectID)
	if errors.Is(err, mongoDB.ErrNoDocuments) {
		return ErrNotificationNotFound
	}
	return err
}

// MarkAllRead 一键已读
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uint64) error {
	_, err := s.notificationRepo.MarkAllAsRead(ctx, userID)
	return err
}

// DeleteNotification 删除通知，只能删除自己的通知
func (s *notificationServiceImpl) DeleteNotification(ctx context.Context, userID uint64, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotificationNotFound
	}
	err = s.notificationRepo.DeleteNotification(ctx, userID, objectID)
	if errors.Is(err, mongoDB.ErrNoDocuments) {
		return ErrNotificationNotFound
	}
	return err
}

func toNotificationDTO(m *mongo.NotificationModel) *dto.NotificationDTO {
	d := &dto.NotificationDTO{}
	_ = copier.Copy(d, m)
	d.ID = m.ID.Hex()
	d.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
	return d
}
