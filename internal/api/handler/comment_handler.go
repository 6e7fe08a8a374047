package handler

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/pkg/response"
	"Inkwell/internal/service"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentSvc service.CommentService
}

func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentSvc: commentSvc,
	}
}

// CreateComment 发表评论或回复
func (s *CommentHandler) CreateComment(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CommentCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	req.PostID = postID

	comment, err := s.commentSvc.CreateComment(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// GetComments 获取评论树，登录用户附带自己的反应
func (s *CommentHandler) GetComments(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	comments, err := s.commentSvc.GetComments(c.Request.Context(), postID, c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comments)
}

// PinComment 置顶评论，commentId 为空时取消置顶
func (s *CommentHandler) PinComment(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.PinCommentReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.commentSvc.SetPinned(c.Request.Context(), postID, c.GetUint64("user_id"), req.CommentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UnpinComment 取消置顶
func (s *CommentHandler) UnpinComment(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.commentSvc.SetPinned(c.Request.Context(), postID, c.GetUint64("user_id"), nil); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteComment 删除评论
func (s *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}
	if err := s.commentSvc.DeleteComment(c.Request.Context(), c.GetUint64("user_id"), commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
