package handler

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/pkg/response"
	"Inkwell/internal/service"

	"github.com/gin-gonic/gin"
)

// SetCommentStatus 管理员隐藏/恢复评论
func (s *CommentHandler) SetCommentStatus(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}
	var req dto.CommentStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := s.commentSvc.SetCommentStatus(c.Request.Context(), commentID, req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
