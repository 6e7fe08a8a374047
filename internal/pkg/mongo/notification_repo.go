package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepo interface {
	CreateNotification(ctx context.Context, msg *NotificationModel) error
	GetNotificationList(ctx context.Context, userID uint64, limit, offset int64) ([]*NotificationModel, error)
	GetUnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkAsRead(ctx context.Context, userID uint64, id primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID uint64) (int64, error)
	DeleteNotification(ctx context.Context, userID uint64, id primitive.ObjectID) error
}

type notificationRepoImpl struct {
	col *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) NotificationRepo {
	return &notificationRepoImpl{
		col: db.Collection("notifications"),
	}
}

// EnsureNotificationIndexes 创建收件箱查询所需索引
func EnsureNotificationIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("notifications").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}}},
	})
	return err
}

// CreateNotification 插入新通知
func (s *notificationRepoImpl) CreateNotification(ctx context.Context, msg *NotificationModel) error {
	res, err := s.col.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = id
	}
	return nil
}

// GetNotificationList 分页获取用户的通知列表 (按时间倒序)
func (s *notificationRepoImpl) GetNotificationList(ctx context.Context, userID uint64, limit, offset int64) ([]*NotificationModel, error) {
	filter := bson.M{"recipient_id": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*NotificationModel, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetUnreadCount 获取用户的未读通知总数
func (s *notificationRepoImpl) GetUnreadCount(ctx context.Context, userID uint64) (int64, error) {
	filter := bson.M{"recipient_id": userID, "is_read": false}
	return s.col.CountDocuments(ctx, filter)
}

// MarkAsRead 标记单条通知为已读，只能操作自己的通知
func (s *notificationRepoImpl) MarkAsRead(ctx context.Context, userID uint64, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "recipient_id": userID}
	update := bson.M{"$set": bson.M{"is_read": true}}
	result, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAllAsRead 将用户所有未读通知标记为已读
func (s *notificationRepoImpl) MarkAllAsRead(ctx context.Context, userID uint64) (int64, error) {
	filter := bson.M{"recipient_id": userID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true}}
	result, err := s.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// DeleteNotification 删除单条通知
func (s *notificationRepoImpl) DeleteNotification(ctx context.Context, userID uint64, id primitive.ObjectID) error {
	result, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "recipient_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
