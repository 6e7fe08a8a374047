package handler

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/response"
	"Inkwell/internal/service"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	reactionSvc service.ReactionService
}

func NewReactionHandler(reactionSvc service.ReactionService) *ReactionHandler {
	return &ReactionHandler{
		reactionSvc: reactionSvc,
	}
}

// ReactPost 对帖子设置/切换/取消反应
func (s *ReactionHandler) ReactPost(c *gin.Context) {
	s.react(c, consts.SubjectPost, "id")
}

// ReactComment 对评论设置/切换/取消反应
func (s *ReactionHandler) ReactComment(c *gin.Context) {
	s.react(c, consts.SubjectComment, "commentId")
}

func (s *ReactionHandler) react(c *gin.Context, subjectType, param string) {
	subjectID, ok := parseIDParam(c, param)
	if !ok {
		return
	}
	userID := c.GetUint64("user_id")

	var req dto.ReactionReq
	// 空请求体等同于取消反应
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.reactionSvc.SetReaction(c.Request.Context(), subjectType, subjectID, userID, req.ReactionType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetPostReactionStats 获取帖子反应统计
func (s *ReactionHandler) GetPostReactionStats(c *gin.Context) {
	s.stats(c, consts.SubjectPost, "id")
}

// GetCommentReactionStats 获取评论反应统计
func (s *ReactionHandler) GetCommentReactionStats(c *gin.Context) {
	s.stats(c, consts.SubjectComment, "commentId")
}

func (s *ReactionHandler) stats(c *gin.Context, subjectType, param string) {
	subjectID, ok := parseIDParam(c, param)
	if !ok {
		return
	}
	stats, err := s.reactionSvc.GetReactionStats(c.Request.Context(), subjectType, subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
