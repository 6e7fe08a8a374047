package dto

// UserStatusReq 管理员手动封禁/解封
type UserStatusReq struct {
	Status string `json:"status" binding:"required,oneof=active locked"`
}

// ShareDTO 转发结果
type ShareDTO struct {
	ShareID uint64 `json:"shareId"`
	PostID  uint64 `json:"postId"`
}
