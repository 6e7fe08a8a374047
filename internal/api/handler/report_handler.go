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

type ReportHandler struct {
	reportSvc service.ReportService
}

func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportSvc: reportSvc,
	}
}

// ReportPost 举报帖子
func (s *ReportHandler) ReportPost(c *gin.Context) {
	s.file(c, consts.SubjectPost, "id")
}

// ReportComment 举报评论
func (s *ReportHandler) ReportComment(c *gin.Context) {
	s.file(c, consts.SubjectComment, "commentId")
}

func (s *ReportHandler) file(c *gin.Context, subjectType, param string) {
	subjectID, ok := parseIDParam(c, param)
	if !ok {
		return
	}
	var req dto.ReportReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, err)
		return
	}

	report, err := s.reportSvc.FileReport(c.Request.Context(), subjectType, subjectID, c.GetUint64("user_id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}

// ApproveReport 审核通过
func (s *ReportHandler) ApproveReport(c *gin.Context) {
	s.decide(c, true)
}

// RejectReport 驳回举报
func (s *ReportHandler) RejectReport(c *gin.Context) {
	s.decide(c, false)
}

func (s *ReportHandler) decide(c *gin.Context, approve bool) {
	reportID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	res, err := s.reportSvc.Decide(c.Request.Context(), reportID, c.GetUint64("user_id"), approve)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListReports 分页查看举报
func (s *ReportHandler) ListReports(c *gin.Context) {
	var req dto.ReportListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	list, err := s.reportSvc.ListReports(c.Request.Context(), req.Status, req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// SetUserStatus 手动锁定/解锁用户
func (s *ReportHandler) SetUserStatus(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UserStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := s.reportSvc.SetUserStatus(c.Request.Context(), c.GetUint64("user_id"), userID, req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
