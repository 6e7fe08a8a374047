package service

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid           = errors.New("参数错误")
	ErrEmptyContent           = errors.New("内容不能为空")
	ErrInvalidReactionType    = errors.New("无效的反应类型")
	ErrReportReasonRequired   = errors.New("请填写举报理由")
	ErrInvalidPinTarget       = errors.New("只能置顶本帖的一级评论")
	ErrUserNotFound           = errors.New("用户不存在")
	ErrPostNotFound           = errors.New("帖子不存在")
	ErrPostCommentNotFound    = errors.New("评论不存在")
	ErrSubjectNotFound        = errors.New("内容不存在或已被删除")
	ErrParentNotFound         = errors.New("回复的评论不存在")
	ErrReportNotFound         = errors.New("举报不存在")
	ErrNotificationNotFound   = errors.New("通知不存在")
	ErrPinForbidden           = errors.New("只有帖子作者可以置顶评论")
	ErrCommentDeleteForbidden = errors.New("无权删除该评论")
	ErrSelfReport             = errors.New("不能举报自己的内容")
	ErrReportDuplicatePending = errors.New("已举报该内容，请等待处理")
	ErrReportAlreadyReviewed  = errors.New("该举报已处理")
	ErrUserFollowSelf         = errors.New("用户不能关注自己")
	ErrUserFollowExist        = errors.New("用户已关注")
	ErrUserBanSelf            = errors.New("不能封禁自己")
	ErrUserBanAdmin           = errors.New("不能封禁管理员")
	UnauthorizedError         = errors.New("权限不足")
	UnExpectedError           = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:           BadRequest,
	ErrEmptyContent:           BadRequest,
	ErrInvalidReactionType:    BadRequest,
	ErrReportReasonRequired:   BadRequest,
	ErrInvalidPinTarget:       BadRequest,
	ErrUserNotFound:           NotFound,
	ErrPostNotFound:           NotFound,
	ErrPostCommentNotFound:    NotFound,
	ErrSubjectNotFound:        NotFound,
	ErrParentNotFound:         NotFound,
	ErrReportNotFound:         NotFound,
	ErrNotificationNotFound:   NotFound,
	ErrPinForbidden:           Forbidden,
	ErrCommentDeleteForbidden: Forbidden,
	ErrSelfReport:             Forbidden,
	ErrReportDuplicatePending: Forbidden,
	ErrReportAlreadyReviewed:  Forbidden,
	ErrUserFollowSelf:         BadRequest,
	ErrUserFollowExist:        BadRequest,
	ErrUserBanSelf:            Forbidden,
	ErrUserBanAdmin:           Forbidden,
	UnauthorizedError:         Unauthorized,
	UnExpectedError:           InternalServerError,
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}
