package dto

// ReportReq 举报请求
type ReportReq struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ReportDTO 举报详情
type ReportDTO struct {
	ID              uint64  `json:"id"`
	SubjectType     string  `json:"subjectType"`
	SubjectID       uint64  `json:"subjectId"`
	PostID          uint64  `json:"postId"`
	SubjectAuthorID uint64  `json:"subjectAuthorId"`
	ReporterID      uint64  `json:"reporterId"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ReviewedBy      *uint64 `json:"reviewedBy"`
	ReviewedAt      string  `json:"reviewedAt,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// ReportListReq 举报列表查询
type ReportListReq struct {
	PageReq
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// ReportDecisionDTO 审核结果
type ReportDecisionDTO struct {
	Report        *ReportDTO `json:"report"`
	WarningCount  int        `json:"warningCount"`
	AuthorStatus  string     `json:"authorStatus,omitempty"`
	AccountLocked bool       `json:"accountLocked"`
}
