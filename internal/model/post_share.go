package model

import "time"

type PostShare struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PostID    uint64    `gorm:"not null;index:idx_share_post" json:"postId"`
	UserID    uint64    `gorm:"not null;index:idx_share_user" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PostShare) TableName() string {
	return "post_shares"
}
