package dto

// NotificationDTO 通知返回对象
type NotificationDTO struct {
	ID         string `json:"id"`
	SenderID   uint64 `json:"senderId"`
	SenderName string `json:"senderName"`
	AvatarURL  string `json:"avatarUrl"`
	Type       string `json:"type"`
	PostID     uint64 `json:"postId,omitempty"`
	TargetID   uint64 `json:"targetId,omitempty"`
	Message    string `json:"message"`
	IsRead     bool   `json:"isRead"`
	CreatedAt  string `json:"createdAt"`
}

// NotificationUnreadDTO 未读数返回
type NotificationUnreadDTO struct {
	UnreadCount int64 `json:"unreadCount"`
}
