package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationModel 站内通知模型，创建后内容不再修改
type NotificationModel struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID uint64             `bson:"recipient_id" json:"recipientId"` // 接收者ID
	SenderID    uint64             `bson:"sender_id" json:"senderId"`       // 动作发起者ID (系统通知为0)
	Type        string             `bson:"type" json:"type"`                // reaction / comment / reply / report / warning ...
	PostID      uint64             `bson:"post_id,omitempty" json:"postId"` // 关联帖子
	TargetID    uint64             `bson:"target_id,omitempty" json:"targetId"`
	Message     string             `bson:"message" json:"message"`
	IsRead      bool               `bson:"is_read" json:"isRead"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
