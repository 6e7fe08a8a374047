package service

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/model"
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/redis"
	"Inkwell/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/samber/lo"
)

const reportLockExpiration = 5 * time.Second

type ReportService interface {
	FileReport(ctx context.Context, subjectType string, subjectID, reporterID uint64, reason string) (*dto.ReportDTO, error)
	Decide(ctx context.Context, reportID, adminID uint64, approve bool) (*dto.ReportDecisionDTO, error)
	ListReports(ctx context.Context, status string, page, pageSize int) ([]*dto.ReportDTO, error)
	SetUserStatus(ctx context.Context, adminID, userID uint64, status string) error
}

type reportServiceImpl struct {
	reportRepo  repository.ReportRepo
	postRepo    repository.PostRepo
	commentRepo repository.CommentRepo
	userRepo    repository.UserRepo
	notifier    NotificationService
}

func NewReportService(
	reportRepo repository.ReportRepo,
	postRepo repository.PostRepo,
	commentRepo repository.CommentRepo,
	userRepo repository.UserRepo,
	notifier NotificationService,
) ReportService {
	return &reportServiceImpl{
		reportRepo:  reportRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// FileReport 提交举报，同一举报人对同一内容只能有一条待处理举报
func (s *reportServiceImpl) FileReport(ctx context.Context, subjectType string, subjectID, reporterID uint64, reason string) (*dto.ReportDTO, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReportReasonRequired
	}

	report, err := s.resolveSubject(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	if report.SubjectAuthorID == reporterID {
		return nil, ErrSelfReport
	}
	report.ReporterID = reporterID
	report.Reason = reason

	if redis.Enabled() {
		key := consts.ReportLock + subjectType + ":" + strconv.FormatUint(subjectID, 10) + ":" + strconv.FormatUint(reporterID, 10)
		token := uuid.NewString()
		ok, err := redis.TryLock(ctx, key, token, reportLockExpiration, 0)
		if err != nil {
			log.WarnContext(ctx, "report lock error", "key", key, "err", err)
		} else if !ok {
			return nil, ErrReportDuplicatePending
		} else {
			defer redis.UnLock(ctx, key, token)
		}
	}

	err = withTxRetry(ctx, "file_report", func() error {
		report.ID = 0
		err := s.reportRepo.CreateReport(ctx, report)
		switch {
		case errors.Is(err, repository.ErrPendingReportExists):
			return ErrReportDuplicatePending
		case errors.Is(err, repository.ErrSubjectNotFound):
			return ErrSubjectNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	reportsProcessed.WithLabelValues(subjectType, "filed").Inc()

	admins, err := s.userRepo.GetUserIDsByRole(ctx, consts.RoleAdmin)
	if err != nil {
		log.ErrorContext(ctx, "load admins for report fan-out error", "report_id", report.ID, "err", err)
	} else {
		s.notifier.NotifyMany(ctx, admins, NotifyParams{
			SenderID: reporterID,
			Type:     NotifyReport,
			Message:  fmt.Sprintf("有新的%s举报待处理：%s", subjectLabel(subjectType), truncateRunes(reason, 50)),
			PostID:   report.PostID,
			TargetID: report.ID,
		})
	}

	return toReportDTO(report), nil
}

// resolveSubject 查找被举报内容及其作者
func (s *reportServiceImpl) resolveSubject(ctx context.Context, subjectType string, subjectID uint64) (*model.Report, error) {
	switch subjectType {
	case consts.SubjectPost:
		post, err := s.postRepo.GetPost(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, ErrSubjectNotFound
		}
		return &model.Report{SubjectType: subjectType, SubjectID: post.ID, PostID: post.ID, SubjectAuthorID: post.UserID}, nil
	case consts.SubjectComment:
		comment, err := s.commentRepo.GetCommentByID(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		if comment == nil || comment.Status != consts.CommentStatusVisible {
			return nil, ErrSubjectNotFound
		}
		return &model.Report{SubjectType: subjectType, SubjectID: comment.ID, PostID: comment.PostID, SubjectAuthorID: comment.UserID}, nil
	}
	return nil, ErrParamInvalid
}

// Decide 审核举报；通过时作者警告次数加一，达到阈值与加一同时锁定账号
func (s *reportServiceImpl) Decide(ctx context.Context, reportID, adminID uint64, approve bool) (*dto.ReportDecisionDTO, error) {
	var decision *repository.ReportDecision
	err := withTxRetry(ctx, "decide_report", func() error {
		d, err := s.reportRepo.Decide(ctx, reportID, adminID, approve)
		switch {
		case errors.Is(err, repository.ErrReportMissing):
			return ErrReportNotFound
		case errors.Is(err, repository.ErrReportNotPending):
			return ErrReportAlreadyReviewed
		case errors.Is(err, repository.ErrAuthorMissing):
			return ErrUserNotFound
		case err != nil:
			return err
		}
		decision = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &decision.Report
	label := subjectLabel(report.SubjectType)
	reportsProcessed.WithLabelValues(report.SubjectType, report.Status).Inc()

	if approve {
		notifyType := NotifyWarning
		message := fmt.Sprintf("你发布的%s经核实违反社区规范，这是第 %d 次警告", label, decision.WarningCount)
		if decision.LockTriggered {
			accountsLocked.Inc()
			notifyType = NotifyAccountLocked
			message += fmt.Sprintf("，累计 %d 次警告，账号已被锁定", consts.WarningLockThreshold)
			log.WarnContext(ctx, "account locked by report escalation",
				"user_id", report.SubjectAuthorID,
				"warning_count", decision.WarningCount,
				"report_id", report.ID)
		}
		s.notifier.Notify(ctx, NotifyParams{
			RecipientID: report.SubjectAuthorID,
			SenderID:    adminID,
			Type:        notifyType,
			Message:     message,
			PostID:      report.PostID,
			TargetID:    report.SubjectID,
		})
		s.notifier.Notify(ctx, NotifyParams{
			RecipientID: report.ReporterID,
			SenderID:    adminID,
			Type:        NotifyReportResolved,
			Message:     fmt.Sprintf("你举报的%s已核实并处理，感谢反馈", label),
			PostID:      report.PostID,
			TargetID:    report.ID,
		})
	} else {
		s.notifier.Notify(ctx, NotifyParams{
			RecipientID: report.ReporterID,
			SenderID:    adminID,
			Type:        NotifyReportRejected,
			Message:     fmt.Sprintf("你举报的%s经审核未发现违规", label),
			PostID:      report.PostID,
			TargetID:    report.ID,
		})
	}

	return &dto.ReportDecisionDTO{
		Report:        toReportDTO(report),
		WarningCount:  decision.WarningCount,
		AuthorStatus:  decision.AuthorStatus,
		AccountLocked: decision.LockTriggered,
	}, nil
}

// ListReports 管理员分页查看举报
func (s *reportServiceImpl) ListReports(ctx context.Context, status string, page, pageSize int) ([]*dto.ReportDTO, error) {
	reports, err := s.reportRepo.ListReports(ctx, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return lo.Map(reports, func(r *model.Report, _ int) *dto.ReportDTO { return toReportDTO(r) }), nil
}

// SetUserStatus 管理员手动锁定或解锁账号，警告次数保持不变
func (s *reportServiceImpl) SetUserStatus(ctx context.Context, adminID, userID uint64, status string) error {
	if status != consts.UserStatusActive && status != consts.UserStatusLocked {
		return ErrParamInvalid
	}

	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if status == consts.UserStatusLocked {
		if userID == adminID {
			return ErrUserBanSelf
		}
		isAdmin := lo.ContainsBy(user.UserRoles, func(r model.UserRole) bool { return r.Role.Name == consts.RoleAdmin })
		if isAdmin {
			return ErrUserBanAdmin
		}
	}

	if _, err = s.userRepo.UpdateUserStatus(ctx, userID, status); err != nil {
		return err
	}
	log.InfoContext(ctx, "user status changed by admin", "admin_id", adminID, "user_id", userID, "status", status)
	return nil
}

func toReportDTO(r *model.Report) *dto.ReportDTO {
	d := &dto.ReportDTO{}
	_ = copier.Copy(d, r)
	d.CreatedAt = r.CreatedAt.Format("2006-01-02 15:04:05")
	if r.ReviewedAt != nil {
		d.ReviewedAt = r.ReviewedAt.Format("2006-01-02 15:04:05")
	}
	return d
}
