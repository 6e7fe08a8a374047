package model

import "time"

// Reaction 每个用户对每个主体最多一行
type Reaction struct {
	ID           uint64    `gorm:"primaryKey"`
	SubjectType  string    `gorm:"type:varchar(16);not null;uniqueIndex:uk_subject_user,priority:1;index:idx_subject,priority:1" json:"subjectType"`
	SubjectID    uint64    `gorm:"not null;uniqueIndex:uk_subject_user,priority:2;index:idx_subject,priority:2" json:"subjectId"`
	UserID       uint64    `gorm:"not null;uniqueIndex:uk_subject_user,priority:3" json:"userId"`
	ReactionType string    `gorm:"type:varchar(16);not null" json:"reactionType"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Reaction) TableName() string {
	return "reactions"
}
