package model

import (
	"Inkwell/internal/pkg/ledger"
	"time"
)

type PostComment struct {
	ID            uint64          `gorm:"primaryKey"`
	PostID        uint64          `gorm:"not null;index:idx_comment_post" json:"postId"`
	UserID        uint64          `gorm:"not null" json:"userId"`
	Content       string          `gorm:"type:varchar(1000);not null" json:"content"`
	ParentID      uint64          `gorm:"not null;default:0;index:idx_comment_parent" json:"parentId"` // 0表示一级评论，否则指向一级评论
	ReplyToUserID uint64          `gorm:"not null;default:0" json:"replyToUserId"`                     // 0表示无回复目标
	Status        string          `gorm:"type:varchar(16);not null;default:'visible'" json:"status"`
	Reactions     ledger.Counters `gorm:"embedded" json:"reactions"`
	IsDeleted     bool            `gorm:"type:tinyint(1);not null;default:0" json:"isDeleted"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (PostComment) TableName() string {
	return "post_comments"
}

// IsTopLevel 是否为一级评论
func (c *PostComment) IsTopLevel() bool {
	return c.ParentID == 0
}
