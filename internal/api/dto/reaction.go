package dto

// ReactionReq 反应请求，reactionType 为空表示取消当前反应
type ReactionReq struct {
	ReactionType *string `json:"reactionType"`
}

// ReactionResultDTO 反应结果
type ReactionResultDTO struct {
	Action       string  `json:"action"` // react / change / unreact / noop
	ReactionType *string `json:"reactionType"`
}

// ReactionStatsDTO 反应统计
type ReactionStatsDTO struct {
	Like  int64 `json:"like"`
	Love  int64 `json:"love"`
	Haha  int64 `json:"haha"`
	Wow   int64 `json:"wow"`
	Sad   int64 `json:"sad"`
	Angry int64 `json:"angry"`
	Total int64 `json:"total"`
}
