package consts

const (
	SubjectPost    = "post"
	SubjectComment = "comment"
)

const (
	CommentStatusVisible = "visible"
	CommentStatusHidden  = "hidden"
)

const (
	UserStatusActive = "active"
	UserStatusLocked = "locked"
)

const (
	ReportStatusPending  = "pending"
	ReportStatusApproved = "approved"
	ReportStatusRejected = "rejected"
)

const (
	RoleAdmin = "ADMIN"
)

// WarningLockThreshold 警告次数达到该值时自动锁定账号
const WarningLockThreshold = 3
