package dto

// CommentCreateDTO 创建评论请求
type CommentCreateDTO struct {
	PostID   uint64 `json:"-"`
	Content  string `json:"content" binding:"max=1000"`
	ParentID uint64 `json:"parentId"` // 0 表示一级评论
}

// CommentDTO 评论返回详情
type CommentDTO struct {
	ID              uint64           `json:"id"`
	PostID          uint64           `json:"postId"`
	UserID          uint64           `json:"userId"`
	Nickname        string           `json:"nickname"`
	AvatarURL       string           `json:"avatarUrl"`
	Content         string           `json:"content"`
	ParentID        uint64           `json:"parentId"`
	ReplyToUserID   uint64           `json:"replyToUserId"`
	ReplyToNickname string           `json:"replyToNickname"`
	Stats           ReactionStatsDTO `json:"reactions"`
	IsLiked         bool             `json:"isLiked"`
	ReactionType    *string          `json:"reactionType"`
	IsPinned        bool             `json:"isPinned"`
	CreatedAt       string           `json:"createdAt"`

	Replies []*CommentDTO `json:"replies"`
}

// PinCommentReq 置顶评论请求
type PinCommentReq struct {
	CommentID *uint64 `json:"commentId"`
}

// CommentStatusReq 管理员修改评论可见性
type CommentStatusReq struct {
	Status string `json:"status" binding:"required,oneof=visible hidden"`
}
