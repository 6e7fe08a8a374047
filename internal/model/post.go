package model

import (
	"Inkwell/internal/pkg/ledger"
	"time"
)

type Post struct {
	ID              uint64          `gorm:"primaryKey"`
	UserID          uint64          `gorm:"not null;index:idx_post_user" json:"user_id"`
	Title           string          `gorm:"type:varchar(255)" json:"title"`
	Content         string          `gorm:"not null" json:"content"`
	Reactions       ledger.Counters `gorm:"embedded" json:"reactions"`
	CommentsCount   int             `gorm:"not null;default:0" json:"comments_count"`
	SharesCount     int             `gorm:"not null;default:0" json:"shares_count"`
	PinnedCommentID *uint64         `json:"pinned_comment_id"` // 只能是本帖的一级评论
	IsDeleted       bool            `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
