package repository

import (
	"Inkwell/internal/model"
	"Inkwell/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrPendingReportExists 同一举报人对同一主体已有待处理举报
	ErrPendingReportExists = errors.New("pending report exists")
	// ErrReportNotPending 举报已被处理
	ErrReportNotPending = errors.New("report not pending")
	// ErrReportMissing 举报不存在
	ErrReportMissing = errors.New("report missing")
	// ErrAuthorMissing 被举报内容的作者不存在
	ErrAuthorMissing = errors.New("report subject author missing")
)

// ReportDecision 审核提交后的结果
type ReportDecision struct {
	Report        model.Report
	WarningCount  int
	AuthorStatus  string
	LockTriggered bool // 本次审核使账号由 active 变为 locked
}

type ReportRepo interface {
	CreateReport(ctx context.Context, report *model.Report) error
	GetReportByID(ctx context.Context, id uint64) (*model.Report, error)
	ListReports(ctx context.Context, status string, limit, offset int) ([]*model.Report, error)
	Decide(ctx context.Context, id, reviewerID uint64, approve bool) (*ReportDecision, error)
}

type ReportRepoImpl struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepo {
	return &ReportRepoImpl{db: db}
}

// CreateReport 在锁定被举报主体后检查重复并写入待处理举报
func (s *ReportRepoImpl) CreateReport(ctx context.Context, report *model.Report) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSubject(tx, report.SubjectType, report.SubjectID); err != nil {
			return err
		}

		var count int64
		err := tx.Model(&model.Report{}).
			Where("subject_type = ? AND subject_id = ? AND reporter_id = ? AND status = ?",
				report.SubjectType, report.SubjectID, report.ReporterID, consts.ReportStatusPending).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrPendingReportExists
		}

		report.Status = consts.ReportStatusPending
		return tx.Create(report).Error
	})
}

func (s *ReportRepoImpl) GetReportByID(ctx context.Context, id uint64) (*model.Report, error) {
	var report model.Report
	err := s.db.WithContext(ctx).First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// ListReports 按状态分页查询举报，status 为空时不过滤
func (s *ReportRepoImpl) ListReports(ctx context.Context, status string, limit, offset int) ([]*model.Report, error) {
	reports := make([]*model.Report, 0)
	q := s.db.WithContext(ctx).Model(&model.Report{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Decide 审核举报；通过时在同一事务内累加作者警告次数，达到阈值即锁定账号
func (s *ReportRepoImpl) Decide(ctx context.Context, id, reviewerID uint64, approve bool) (*ReportDecision, error) {
	status := consts.ReportStatusRejected
	if approve {
		status = consts.ReportStatusApproved
	}

	var decision *ReportDecision
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&model.Report{}).
			Where("id = ? AND status = ?", id, consts.ReportStatusPending).
			Updates(map[string]interface{}{
				"status":      status,
				"reviewed_by": reviewerID,
				"reviewed_at": now,
				"updated_at":  now,
			})
		if result.Error != nil {
			return result.Error
		}

		var report model.Report
		if err := tx.First(&report, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportMissing
			}
			return err
		}
		if result.RowsAffected == 0 {
			return ErrReportNotPending
		}

		decision = &ReportDecision{Report: report}
		if !approve {
			return nil
		}

		var before model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "warning_count", "status").
			First(&before, report.SubjectAuthorID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAuthorMissing
			}
			return err
		}

		// status 必须先于 warning_count 赋值，MySQL 按从左到右的顺序使用已更新的列值
		err = tx.Exec(
			"UPDATE users SET status = CASE WHEN warning_count + 1 >= ? THEN ? ELSE status END, "+
				"warning_count = warning_count + 1, updated_at = ? WHERE id = ?",
			consts.WarningLockThreshold, consts.UserStatusLocked, now, report.SubjectAuthorID,
		).Error
		if err != nil {
			return err
		}

		var after model.User
		err = tx.Select("id", "warning_count", "status").First(&after, report.SubjectAuthorID).Error
		if err != nil {
			return err
		}

		decision.WarningCount = after.WarningCount
		decision.AuthorStatus = after.Status
		decision.LockTriggered = before.Status != consts.UserStatusLocked && after.Status == consts.UserStatusLocked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decision, nil
}
