package api

import (
	"Inkwell/internal/api/config"
	"Inkwell/internal/api/dto"
	"Inkwell/internal/api/handler"
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/ledger"
	"Inkwell/internal/pkg/redis"
	"Inkwell/internal/pkg/security"
	"Inkwell/internal/service"
	"context"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	log.SetDefault(log.New(log.NewTextHandler(io.Discard, nil)))
	security.SetSecret("route-test-secret")
	os.Exit(m.Run())
}

type reactionCall struct {
	subjectType string
	subjectID   uint64
	userID      uint64
	requested   *string
}

type stubReactionService struct {
	calls []reactionCall
	err   error
}

func (s *stubReactionService) SetReaction(_ context.Context, subjectType string, subjectID, userID uint64, requested *string) (*dto.ReactionResultDTO, error) {
	s.calls = append(s.calls, reactionCall{subjectType, subjectID, userID, requested})
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ReactionResultDTO{Action: service.ActionReact, ReactionType: requested}, nil
}

func (s *stubReactionService) GetReactionStats(context.Context, string, uint64) (*dto.ReactionStatsDTO, error) {
	return &dto.ReactionStatsDTO{Love: 1, Total: 1}, nil
}

func (s *stubReactionService) GetUserReactions(context.Context, uint64, string, []uint64) (map[uint64]ledger.Bucket, error) {
	return nil, nil
}

func (s *stubReactionService) Reconcile(context.Context, string, uint64) (bool, error) {
	return false, nil
}

type stubCommentService struct {
	viewer     uint64
	pinned     *uint64
	pinCalled  bool
	statusSeen string
}

func (s *stubCommentService) CreateComment(_ context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error) {
	return &dto.CommentDTO{ID: 1, PostID: req.PostID, UserID: userID, Content: req.Content}, nil
}

func (s *stubCommentService) BuildTree(context.Context, uint64) ([]*service.CommentNode, error) {
	return nil, nil
}

func (s *stubCommentService) GetComments(_ context.Context, _ uint64, viewerID uint64) ([]*dto.CommentDTO, error) {
	s.viewer = viewerID
	return []*dto.CommentDTO{}, nil
}

func (s *stubCommentService) SetPinned(_ context.Context, _ uint64, _ uint64, commentID *uint64) error {
	s.pinCalled = true
	s.pinned = commentID
	return nil
}

func (s *stubCommentService) DeleteComment(context.Context, uint64, uint64) error { return nil }

func (s *stubCommentService) SetCommentStatus(_ context.Context, _ uint64, status string) error {
	s.statusSeen = status
	return nil
}

type decideCall struct {
	reportID, adminID uint64
	approve           bool
}

type stubReportService struct {
	decided    []decideCall
	listStatus string
	reason     string
}

func (s *stubReportService) FileReport(_ context.Context, subjectType string, subjectID, reporterID uint64, reason string) (*dto.ReportDTO, error) {
	s.reason = reason
	if reason == "" {
		return nil, service.ErrReportReasonRequired
	}
	return &dto.ReportDTO{ID: 1, SubjectType: subjectType, SubjectID: subjectID, ReporterID: reporterID}, nil
}

func (s *stubReportService) Decide(_ context.Context, reportID, adminID uint64, approve bool) (*dto.ReportDecisionDTO, error) {
	s.decided = append(s.decided, decideCall{reportID, adminID, approve})
	return &dto.ReportDecisionDTO{Report: &dto.ReportDTO{ID: reportID}}, nil
}

func (s *stubReportService) ListReports(_ context.Context, status string, _, _ int) ([]*dto.ReportDTO, error) {
	s.listStatus = status
	return []*dto.ReportDTO{}, nil
}

func (s *stubReportService) SetUserStatus(context.Context, uint64, uint64, string) error { return nil }

type stubNotificationService struct{}

func (stubNotificationService) Notify(context.Context, service.NotifyParams) bool { return true }
func (stubNotificationService) NotifyMany(context.Context, []uint64, service.NotifyParams) int {
	return 0
}
func (stubNotificationService) GetNotificationList(context.Context, uint64, int, int) ([]*dto.NotificationDTO, error) {
	return []*dto.NotificationDTO{}, nil
}
func (stubNotificationService) GetUnreadCount(context.Context, uint64) (*dto.NotificationUnreadDTO, error) {
	return &dto.NotificationUnreadDTO{UnreadCount: 3}, nil
}
func (stubNotificationService) MarkRead(context.Context, uint64, string) error {
	return service.ErrNotificationNotFound
}
func (stubNotificationService) MarkAllRead(context.Context, uint64) error { return nil }
func (stubNotificationService) DeleteNotification(context.Context, uint64, string) error {
	return nil
}

type stubSocialService struct{}

func (stubSocialService) Follow(context.Context, uint64, uint64) error   { return nil }
func (stubSocialService) Unfollow(context.Context, uint64, uint64) error { return nil }
func (stubSocialService) SharePost(_ context.Context, _ uint64, postID uint64) (*dto.ShareDTO, error) {
	return &dto.ShareDTO{ShareID: 1, PostID: postID}, nil
}
func (stubSocialService) OnFollowed(context.Context, uint64, uint64) bool       { return true }
func (stubSocialService) OnShared(context.Context, uint64, uint64, uint64) bool { return true }

type testServer struct {
	router   *gin.Engine
	reaction *stubReactionService
	comment  *stubCommentService
	report   *stubReportService
}

func newTestServer() *testServer {
	ts := &testServer{
		reaction: &stubReactionService{},
		comment:  &stubCommentService{},
		report:   &stubReportService{},
	}
	ts.router = SetupRouter(&HandlersGroup{
		ReactionHandler:     handler.NewReactionHandler(ts.reaction),
		CommentHandler:      handler.NewCommentHandler(ts.comment),
		ReportHandler:       handler.NewReportHandler(ts.report),
		NotificationHandler: handler.NewNotificationHandler(stubNotificationService{}),
		SocialHandler:       handler.NewSocialHandler(stubSocialService{}),
		WsHandler:           handler.NewWsHandler(),
	})
	return ts
}

func token(t *testing.T, userID uint64, roles ...string) string {
	t.Helper()
	tk, err := security.GenerateToken(userID, roles, time.Hour)
	require.NoError(t, err)
	return tk
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ts *testServer) do(t *testing.T, method, path, tk, body string) envelope {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tk != "" {
		req.Header.Set("Authorization", "Bearer "+tk)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestPing(t *testing.T) {
	ts := newTestServer()
	env := ts.do(t, http.MethodGet, "/ping", "", "")
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "pong", env.Message)
}

func TestReactRequiresAuth(t *testing.T) {
	ts := newTestServer()
	env := ts.do(t, http.MethodPost, "/posts/5/react", "", `{"reactionType":"love"}`)
	assert.Equal(t, 401, env.Code)
	assert.Empty(t, ts.reaction.calls)

	env = ts.do(t, http.MethodPost, "/posts/5/react", "garbage.token.value", `{"reactionType":"love"}`)
	assert.Equal(t, 401, env.Code)
}

func TestReactPostAndComment(t *testing.T) {
	ts := newTestServer()
	tk := token(t, 7)

	env := ts.do(t, http.MethodPost, "/posts/5/react", tk, `{"reactionType":"love"}`)
	require.Equal(t, 200, env.Code, env.Message)
	var res dto.ReactionResultDTO
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, service.ActionReact, res.Action)

	env = ts.do(t, http.MethodPost, "/posts/comments/9/react", tk, "")
	require.Equal(t, 200, env.Code, env.Message)

	require.Len(t, ts.reaction.calls, 2)
	first, second := ts.reaction.calls[0], ts.reaction.calls[1]
	assert.Equal(t, consts.SubjectPost, first.subjectType)
	assert.Equal(t, uint64(5), first.subjectID)
	assert.Equal(t, uint64(7), first.userID)
	require.NotNil(t, first.requested)
	assert.Equal(t, "love", *first.requested)

	assert.Equal(t, consts.SubjectComment, second.subjectType)
	assert.Equal(t, uint64(9), second.subjectID)
	assert.Nil(t, second.requested)
}

func TestReactErrorsMapToBusinessCodes(t *testing.T) {
	ts := newTestServer()
	tk := token(t, 7)

	env := ts.do(t, http.MethodPost, "/posts/abc/react", tk, `{"reactionType":"love"}`)
	assert.Equal(t, 400, env.Code)

	ts.reaction.err = service.ErrSubjectNotFound
	env = ts.do(t, http.MethodPost, "/posts/5/react", tk, `{"reactionType":"love"}`)
	assert.Equal(t, 404, env.Code)
	assert.Equal(t, service.ErrSubjectNotFound.Error(), env.Message)

	ts.reaction.err = fmt.Errorf("load subject: %w", service.ErrInvalidReactionType)
	env = ts.do(t, http.MethodPost, "/posts/5/react", tk, `{"reactionType":"meh"}`)
	assert.Equal(t, 400, env.Code)

	ts.reaction.err = fmt.Errorf("driver: bad connection")
	env = ts.do(t, http.MethodPost, "/posts/5/react", tk, `{"reactionType":"love"}`)
	assert.Equal(t, 500, env.Code)
	assert.Equal(t, service.UnExpectedError.Error(), env.Message)
}

func TestReactionStatsIsPublic(t *testing.T) {
	ts := newTestServer()
	env := ts.do(t, http.MethodGet, "/posts/5/reaction-stats", "", "")
	require.Equal(t, 200, env.Code)
	var stats dto.ReactionStatsDTO
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.Total)

	env = ts.do(t, http.MethodGet, "/posts/comments/3/reaction-stats", "", "")
	assert.Equal(t, 200, env.Code)
}

func TestGetCommentsViewer(t *testing.T) {
	ts := newTestServer()

	env := ts.do(t, http.MethodGet, "/posts/5/comments", "", "")
	require.Equal(t, 200, env.Code)
	assert.Equal(t, uint64(0), ts.comment.viewer)

	env = ts.do(t, http.MethodGet, "/posts/5/comments", token(t, 11), "")
	require.Equal(t, 200, env.Code)
	assert.Equal(t, uint64(11), ts.comment.viewer)
}

func TestPinAndUnpin(t *testing.T) {
	ts := newTestServer()
	tk := token(t, 7)

	env := ts.do(t, http.MethodPost, "/posts/5/pin-comment", tk, `{"commentId":4}`)
	require.Equal(t, 200, env.Code, env.Message)
	require.NotNil(t, ts.comment.pinned)
	assert.Equal(t, uint64(4), *ts.comment.pinned)

	env = ts.do(t, http.MethodDelete, "/posts/5/pin-comment", tk, "")
	require.Equal(t, 200, env.Code)
	assert.Nil(t, ts.comment.pinned)
}

func TestReportPostWithoutBody(t *testing.T) {
	ts := newTestServer()
	env := ts.do(t, http.MethodPost, "/posts/5/report", token(t, 7), "")
	assert.Equal(t, 400, env.Code)
	assert.Equal(t, service.ErrReportReasonRequired.Error(), env.Message)

	env = ts.do(t, http.MethodPost, "/posts/comments/8/report", token(t, 7), `{"reason":"spam"}`)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "spam", ts.report.reason)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	ts := newTestServer()

	env := ts.do(t, http.MethodPut, "/admin/reports/3/approve", token(t, 7), "")
	assert.Equal(t, 403, env.Code)
	assert.Empty(t, ts.report.decided)

	admin := token(t, 1, consts.RoleAdmin)
	env = ts.do(t, http.MethodPut, "/admin/reports/3/approve", admin, "")
	require.Equal(t, 200, env.Code, env.Message)
	env = ts.do(t, http.MethodPut, "/admin/reports/4/reject", admin, "")
	require.Equal(t, 200, env.Code, env.Message)
	assert.Equal(t, []decideCall{{3, 1, true}, {4, 1, false}}, ts.report.decided)

	env = ts.do(t, http.MethodGet, "/admin/reports?status=pending&page=1&page_size=10", admin, "")
	require.Equal(t, 200, env.Code, env.Message)
	assert.Equal(t, "pending", ts.report.listStatus)

	env = ts.do(t, http.MethodGet, "/admin/reports?status=unknown", admin, "")
	assert.Equal(t, 400, env.Code)

	env = ts.do(t, http.MethodPut, "/admin/comments/2/status", admin, `{"status":"hidden"}`)
	require.Equal(t, 200, env.Code, env.Message)
	assert.Equal(t, "hidden", ts.comment.statusSeen)

	env = ts.do(t, http.MethodPut, "/admin/users/2/status", admin, `{"status":"frozen"}`)
	assert.Equal(t, 400, env.Code)
}

func TestNotificationRoutes(t *testing.T) {
	ts := newTestServer()
	tk := token(t, 7)

	env := ts.do(t, http.MethodGet, "/notifications/unread-count", tk, "")
	require.Equal(t, 200, env.Code)
	var unread dto.NotificationUnreadDTO
	require.NoError(t, json.Unmarshal(env.Data, &unread))
	assert.Equal(t, int64(3), unread.UnreadCount)

	env = ts.do(t, http.MethodGet, "/notifications?page=0", tk, "")
	assert.Equal(t, 400, env.Code)

	env = ts.do(t, http.MethodPut, "/notifications/abc/read", tk, "")
	assert.Equal(t, 404, env.Code)

	env = ts.do(t, http.MethodPut, "/notifications/read-all", tk, "")
	assert.Equal(t, 200, env.Code)

	env = ts.do(t, http.MethodGet, "/notifications", "", "")
	assert.Equal(t, 401, env.Code)
}

func TestSocialRoutes(t *testing.T) {
	ts := newTestServer()
	tk := token(t, 7)

	assert.Equal(t, 200, ts.do(t, http.MethodPost, "/users/3/follow", tk, "").Code)
	assert.Equal(t, 200, ts.do(t, http.MethodDelete, "/users/3/follow", tk, "").Code)

	env := ts.do(t, http.MethodPost, "/posts/5/share", tk, "")
	require.Equal(t, 200, env.Code)
	var share dto.ShareDTO
	require.NoError(t, json.Unmarshal(env.Data, &share))
	assert.Equal(t, uint64(5), share.PostID)
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	ts := newTestServer()
	env := ts.do(t, http.MethodGet, "/notifications/ws", "", "")
	assert.Equal(t, 401, env.Code)
}

func TestBlacklistedTokenRejected(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, redis.InitRedis(config.RedisConfig{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = redis.Rdb.Close()
		redis.Rdb = nil
	})

	ts := newTestServer()
	tk := token(t, 7)
	env := ts.do(t, http.MethodPost, "/posts/5/react", tk, `{"reactionType":"love"}`)
	assert.Equal(t, 200, env.Code)

	sig, err := security.ExtractSignature(tk)
	require.NoError(t, err)
	require.NoError(t, redis.SetWithExpiration(context.Background(), consts.TokenBlacklistKey+sig, "1", time.Hour))

	env = ts.do(t, http.MethodPost, "/posts/5/react", tk, `{"reactionType":"love"}`)
	assert.Equal(t, 401, env.Code)
	assert.Len(t, ts.reaction.calls, 1)
}
