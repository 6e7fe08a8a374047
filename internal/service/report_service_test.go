package service

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/pkg/consts"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReportValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	author, reporter := f.user(t), f.user(t)
	postID := f.post(t, author)

	_, err := svc.FileReport(f.ctx, consts.SubjectPost, postID, reporter, "   ")
	assert.ErrorIs(t, err, ErrReportReasonRequired)

	_, err = svc.FileReport(f.ctx, consts.SubjectPost, postID, author, "spam")
	assert.ErrorIs(t, err, ErrSelfReport)

	_, err = svc.FileReport(f.ctx, consts.SubjectPost, postID+100, reporter, "spam")
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	_, err = svc.FileReport(f.ctx, consts.SubjectComment, 999, reporter, "spam")
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	_, err = svc.FileReport(f.ctx, "video", postID, reporter, "spam")
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestFileReportDuplicatePending(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	admin := f.user(t, consts.RoleAdmin)
	author, reporter := f.user(t), f.user(t)
	postID := f.post(t, author)

	report, err := svc.FileReport(f.ctx, consts.SubjectPost, postID, reporter, "spam")
	require.NoError(t, err)
	assert.Equal(t, consts.ReportStatusPending, report.Status)
	assert.Equal(t, author, report.SubjectAuthorID)

	fanout := f.notifier.ofType(NotifyReport)
	require.Len(t, fanout, 1)
	assert.Equal(t, admin, fanout[0].RecipientID)
	assert.Equal(t, report.ID, fanout[0].TargetID)

	_, err = svc.FileReport(f.ctx, consts.SubjectPost, postID, reporter, "still spam")
	assert.ErrorIs(t, err, ErrReportDuplicatePending)

	// 其他举报人不受影响
	_, err = svc.FileReport(f.ctx, consts.SubjectPost, postID, f.user(t), "spam")
	require.NoError(t, err)

	// 处理后可再次举报
	_, err = svc.Decide(f.ctx, report.ID, admin, false)
	require.NoError(t, err)
	_, err = svc.FileReport(f.ctx, consts.SubjectPost, postID, reporter, "spam again")
	require.NoError(t, err)
}

func TestFileReportHeldLockRejected(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	author, reporter := f.user(t), f.user(t)
	postID := f.post(t, author)

	key := consts.ReportLock + "post:" + itoa(postID) + ":" + itoa(reporter)
	require.NoError(t, f.redis.Set(key, "other"))

	_, err := svc.FileReport(f.ctx, consts.SubjectPost, postID, reporter, "spam")
	assert.ErrorIs(t, err, ErrReportDuplicatePending)
}

func TestFileReportOnComment(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	postAuthor, commenter, reporter := f.user(t), f.user(t), f.user(t)
	postID := f.post(t, postAuthor)
	commentID := f.comment(t, postID, commenter, 0)

	report, err := svc.FileReport(f.ctx, consts.SubjectComment, commentID, reporter, "rude")
	require.NoError(t, err)
	assert.Equal(t, commenter, report.SubjectAuthorID)
	assert.Equal(t, postID, report.PostID)

	require.NoError(t, f.commentService().SetCommentStatus(f.ctx, commentID, consts.CommentStatusHidden))
	_, err = svc.FileReport(f.ctx, consts.SubjectComment, commentID, f.user(t), "rude")
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestApproveReportsLocksAuthorAtThreshold(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	admin := f.user(t, consts.RoleAdmin)
	author := f.user(t)

	var decisions []*dto.ReportDecisionDTO
	for i := 0; i < consts.WarningLockThreshold+1; i++ {
		reporter := f.user(t)
		report, err := svc.FileReport(f.ctx, consts.SubjectPost, f.post(t, author), reporter, "spam")
		require.NoError(t, err)

		d, err := svc.Decide(f.ctx, report.ID, admin, true)
		require.NoError(t, err)
		assert.Equal(t, consts.ReportStatusApproved, d.Report.Status)
		require.NotNil(t, d.Report.ReviewedBy)
		assert.Equal(t, admin, *d.Report.ReviewedBy)
		decisions = append(decisions, d)
	}

	assert.Equal(t, 1, decisions[0].WarningCount)
	assert.Equal(t, consts.UserStatusActive, decisions[0].AuthorStatus)
	assert.False(t, decisions[1].AccountLocked)

	assert.Equal(t, 3, decisions[2].WarningCount)
	assert.Equal(t, consts.UserStatusLocked, decisions[2].AuthorStatus)
	assert.True(t, decisions[2].AccountLocked)

	// 已锁定账号继续累加警告但不再触发锁定
	assert.Equal(t, 4, decisions[3].WarningCount)
	assert.False(t, decisions[3].AccountLocked)

	u := f.loadUser(t, author)
	assert.Equal(t, 4, u.WarningCount)
	assert.Equal(t, consts.UserStatusLocked, u.Status)

	assert.Len(t, f.notifier.ofType(NotifyWarning), 3)
	locked := f.notifier.ofType(NotifyAccountLocked)
	require.Len(t, locked, 1)
	assert.Equal(t, author, locked[0].RecipientID)
	assert.Equal(t, admin, locked[0].SenderID)
	assert.Len(t, f.notifier.ofType(NotifyReportResolved), 4)
}

func TestConcurrentApprovalsLockExactlyOnce(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	admin := f.user(t, consts.RoleAdmin)
	author := f.user(t)

	const n = 5
	ids := make([]uint64, n)
	for i := range ids {
		report, err := svc.FileReport(f.ctx, consts.SubjectPost, f.post(t, author), f.user(t), "spam")
		require.NoError(t, err)
		ids[i] = report.ID
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		locks   int
		results []*dto.ReportDecisionDTO
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			d, err := svc.Decide(f.ctx, id, admin, true)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			results = append(results, d)
			if d.AccountLocked {
				locks++
			}
		}(id)
	}
	wg.Wait()

	require.Len(t, results, n)
	assert.Equal(t, 1, locks)
	u := f.loadUser(t, author)
	assert.Equal(t, n, u.WarningCount)
	assert.Equal(t, consts.UserStatusLocked, u.Status)
}

func TestDecideTwiceAlreadyReviewed(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	admin := f.user(t, consts.RoleAdmin)
	author := f.user(t)
	report, err := svc.FileReport(f.ctx, consts.SubjectPost, f.post(t, author), f.user(t), "spam")
	require.NoError(t, err)

	_, err = svc.Decide(f.ctx, report.ID, admin, true)
	require.NoError(t, err)

	_, err = svc.Decide(f.ctx, report.ID, admin, true)
	assert.ErrorIs(t, err, ErrReportAlreadyReviewed)
	_, err = svc.Decide(f.ctx, report.ID, admin, false)
	assert.ErrorIs(t, err, ErrReportAlreadyReviewed)
	assert.Equal(t, 1, f.loadUser(t, author).WarningCount)

	_, err = svc.Decide(f.ctx, 999, admin, true)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestRejectReportNotifiesReporterOnly(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	admin := f.user(t, consts.RoleAdmin)
	author, reporter := f.user(t), f.user(t)
	report, err := svc.FileReport(f.ctx, consts.SubjectPost, f.post(t, author), reporter, "spam")
	require.NoError(t, err)
	before := f.notifier.count()

	d, err := svc.Decide(f.ctx, report.ID, admin, false)
	require.NoError(t, err)
	assert.Equal(t, consts.ReportStatusRejected, d.Report.Status)
	assert.False(t, d.AccountLocked)

	assert.Equal(t, before+1, f.notifier.count())
	rejected := f.notifier.ofType(NotifyReportRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, reporter, rejected[0].RecipientID)

	u := f.loadUser(t, author)
	assert.Equal(t, 0, u.WarningCount)
	assert.Equal(t, consts.UserStatusActive, u.Status)
}

func TestListReportsFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	admin := f.user(t, consts.RoleAdmin)
	author := f.user(t)

	r1, err := svc.FileReport(f.ctx, consts.SubjectPost, f.post(t, author), f.user(t), "a")
	require.NoError(t, err)
	_, err = svc.FileReport(f.ctx, consts.SubjectPost, f.post(t, author), f.user(t), "b")
	require.NoError(t, err)
	_, err = svc.Decide(f.ctx, r1.ID, admin, false)
	require.NoError(t, err)

	pending, err := svc.ListReports(f.ctx, consts.ReportStatusPending, 1, 20)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].Reason)

	all, err := svc.ListReports(f.ctx, "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	page2, err := svc.ListReports(f.ctx, "", 2, 1)
	require.NoError(t, err)
	assert.Len(t, page2, 1)
}

func TestSetUserStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	admin := f.user(t, consts.RoleAdmin)
	otherAdmin := f.user(t, consts.RoleAdmin)
	member := f.user(t)

	assert.ErrorIs(t, svc.SetUserStatus(f.ctx, admin, admin, consts.UserStatusLocked), ErrUserBanSelf)
	assert.ErrorIs(t, svc.SetUserStatus(f.ctx, admin, otherAdmin, consts.UserStatusLocked), ErrUserBanAdmin)
	assert.ErrorIs(t, svc.SetUserStatus(f.ctx, admin, 999, consts.UserStatusLocked), ErrUserNotFound)
	assert.ErrorIs(t, svc.SetUserStatus(f.ctx, admin, member, "banned"), ErrParamInvalid)

	require.NoError(t, svc.SetUserStatus(f.ctx, admin, member, consts.UserStatusLocked))
	assert.Equal(t, consts.UserStatusLocked, f.loadUser(t, member).Status)

	require.NoError(t, svc.SetUserStatus(f.ctx, admin, member, consts.UserStatusActive))
	assert.Equal(t, consts.UserStatusActive, f.loadUser(t, member).Status)
}
