package model

import "time"

// Report 帖子与评论举报共用一张表，由 SubjectType 区分
type Report struct {
	ID              uint64     `gorm:"primaryKey" json:"id"`
	SubjectType     string     `gorm:"type:varchar(16);not null;index:idx_report_subject,priority:1" json:"subjectType"`
	SubjectID       uint64     `gorm:"not null;index:idx_report_subject,priority:2" json:"subjectId"`
	PostID          uint64     `gorm:"not null" json:"postId"`
	SubjectAuthorID uint64     `gorm:"not null;index:idx_report_author" json:"subjectAuthorId"` // 举报时内容作者的快照
	ReporterID      uint64     `gorm:"not null;index:idx_report_subject,priority:3" json:"reporterId"`
	Reason          string     `gorm:"type:varchar(500);not null" json:"reason"`
	Status          string     `gorm:"type:varchar(16);not null;default:'pending';index:idx_report_status" json:"status"`
	ReviewedBy      *uint64    `json:"reviewedBy"`
	ReviewedAt      *time.Time `json:"reviewedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (Report) TableName() string {
	return "reports"
}
