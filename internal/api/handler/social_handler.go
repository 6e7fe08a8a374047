package handler

import (
	"Inkwell/internal/pkg/response"
	"Inkwell/internal/service"

	"github.com/gin-gonic/gin"
)

type SocialHandler struct {
	socialSvc service.SocialService
}

func NewSocialHandler(socialSvc service.SocialService) *SocialHandler {
	return &SocialHandler{socialSvc: socialSvc}
}

// Follow 关注用户
func (s *SocialHandler) Follow(c *gin.Context) {
	followingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.socialSvc.Follow(c.Request.Context(), c.GetUint64("user_id"), followingID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Unfollow 取消关注
func (s *SocialHandler) Unfollow(c *gin.Context) {
	followingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.socialSvc.Unfollow(c.Request.Context(), c.GetUint64("user_id"), followingID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// SharePost 转发帖子
func (s *SocialHandler) SharePost(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	res, err := s.socialSvc.SharePost(c.Request.Context(), c.GetUint64("user_id"), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
