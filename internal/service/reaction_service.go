package service

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/ledger"
	"Inkwell/internal/pkg/redis"
	"Inkwell/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"time"
)

const (
	ActionReact   = "react"
	ActionChange  = "change"
	ActionUnreact = "unreact"
	ActionNoop    = "noop"
)

type ReactionService interface {
	SetReaction(ctx context.Context, subjectType string, subjectID, userID uint64, requested *string) (*dto.ReactionResultDTO, error)
	GetReactionStats(ctx context.Context, subjectType string, subjectID uint64) (*dto.ReactionStatsDTO, error)
	GetUserReactions(ctx context.Context, userID uint64, subjectType string, subjectIDs []uint64) (map[uint64]ledger.Bucket, error)
	Reconcile(ctx context.Context, subjectType string, subjectID uint64) (bool, error)
}

type reactionServiceImpl struct {
	reactionRepo repository.ReactionRepo
	notifier     NotificationService
	statsTTL     time.Duration
}

func NewReactionService(reactionRepo repository.ReactionRepo, notifier NotificationService, statsTTL time.Duration) ReactionService {
	return &reactionServiceImpl{
		reactionRepo: reactionRepo,
		notifier:     notifier,
		statsTTL:     statsTTL,
	}
}

// nextReaction 计算变更后的反应：相同类型视为取消，nil 表示移除
func nextReaction(current, requested *ledger.Bucket) *ledger.Bucket {
	if requested == nil || current == nil {
		return requested
	}
	if *current == *requested {
		return nil
	}
	return requested
}

func actionOf(prev, next *ledger.Bucket) string {
	switch {
	case prev == nil && next == nil:
		return ActionNoop
	case prev == nil:
		return ActionReact
	case next == nil:
		return ActionUnreact
	case *prev == *next:
		return ActionNoop
	}
	return ActionChange
}

// SetReaction 设置/切换/取消反应，反应行与计数在同一事务中提交
func (s *reactionServiceImpl) SetReaction(ctx context.Context, subjectType string, subjectID, userID uint64, requested *string) (*dto.ReactionResultDTO, error) {
	if _, err := repository.SubjectTable(subjectType); err != nil {
		return nil, ErrParamInvalid
	}

	var raw string
	if requested != nil {
		raw = *requested
	}
	bucket, err := ledger.ParseBucket(raw)
	if err != nil {
		return nil, ErrInvalidReactionType
	}

	var outcome *repository.ReactionOutcome
	err = withTxRetry(ctx, "set_reaction", func() error {
		out, err := s.reactionRepo.Mutate(ctx, subjectType, subjectID, userID, func(current *ledger.Bucket) *ledger.Bucket {
			return nextReaction(current, bucket)
		})
		if err != nil {
			if errors.Is(err, repository.ErrSubjectNotFound) {
				return ErrSubjectNotFound
			}
			return err
		}
		outcome = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := actionOf(outcome.Previous, outcome.Current)
	reactionsProcessed.WithLabelValues(subjectType, action).Inc()

	res := &dto.ReactionResultDTO{Action: action}
	if outcome.Current != nil {
		t := string(*outcome.Current)
		res.ReactionType = &t
	}
	if action == ActionNoop {
		return res, nil
	}

	s.afterMutation(ctx, subjectType, subjectID)

	if action == ActionReact {
		s.notifier.Notify(ctx, NotifyParams{
			RecipientID: outcome.Subject.UserID,
			SenderID:    userID,
			Type:        NotifyReaction,
			Message:     fmt.Sprintf("对你的%s表达了 %s", subjectLabel(subjectType), *outcome.Current),
			PostID:      outcome.Subject.PostID,
			TargetID:    subjectID,
		})
	}
	return res, nil
}

// afterMutation 提交后清理统计缓存并登记待校对主体，失败只记录日志
func (s *reactionServiceImpl) afterMutation(ctx context.Context, subjectType string, subjectID uint64) {
	if !redis.Enabled() {
		return
	}
	if err := redis.DeleteKey(ctx, statsKey(subjectType, subjectID)); err != nil {
		log.WarnContext(ctx, "invalidate reaction stats error", "subject", subjectType, "id", subjectID, "err", err)
	}
	if err := redis.SAdd(ctx, consts.ReactionDirtyKey, dirtyMember(subjectType, subjectID)); err != nil {
		log.WarnContext(ctx, "mark reaction dirty error", "subject", subjectType, "id", subjectID, "err", err)
	}
}

// GetReactionStats 获取反应统计，优先读取缓存
func (s *reactionServiceImpl) GetReactionStats(ctx context.Context, subjectType string, subjectID uint64) (*dto.ReactionStatsDTO, error) {
	if _, err := repository.SubjectTable(subjectType); err != nil {
		return nil, ErrParamInvalid
	}

	key := statsKey(subjectType, subjectID)
	if redis.Enabled() {
		if fields, err := redis.HGetAll(ctx, key); err == nil && len(fields) > 0 {
			if stats, ok := statsFromHash(fields); ok {
				return stats, nil
			}
		}
	}

	counters, err := s.reactionRepo.GetCounters(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	if counters == nil {
		return nil, ErrSubjectNotFound
	}
	stats := toStatsDTO(*counters)

	if redis.Enabled() {
		if err = redis.HSetWithExpiration(ctx, key, statsToHash(stats), s.statsTTL); err != nil {
			log.WarnContext(ctx, "cache reaction stats error", "key", key, "err", err)
		}
	}
	return stats, nil
}

// GetUserReactions 获取用户对一组主体的反应
func (s *reactionServiceImpl) GetUserReactions(ctx context.Context, userID uint64, subjectType string, subjectIDs []uint64) (map[uint64]ledger.Bucket, error) {
	return s.reactionRepo.GetUserReactions(ctx, userID, subjectType, subjectIDs)
}

// Reconcile 以反应行重算计数，返回是否发生过偏差
func (s *reactionServiceImpl) Reconcile(ctx context.Context, subjectType string, subjectID uint64) (bool, error) {
	before, after, err := s.reactionRepo.Recount(ctx, subjectType, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return false, nil
		}
		return false, err
	}

	drift := before != after
	countersReconciled.WithLabelValues(subjectType, strconv.FormatBool(drift)).Inc()
	if drift {
		log.WarnContext(ctx, "reaction counters drifted",
			"subject", subjectType,
			"id", subjectID,
			"before", before,
			"after", after)
		if redis.Enabled() {
			_ = redis.DeleteKey(ctx, statsKey(subjectType, subjectID))
		}
	}
	return drift, nil
}

func statsKey(subjectType string, subjectID uint64) string {
	return consts.ReactionStatsKey + dirtyMember(subjectType, subjectID)
}

func dirtyMember(subjectType string, subjectID uint64) string {
	return subjectType + ":" + strconv.FormatUint(subjectID, 10)
}

func subjectLabel(subjectType string) string {
	if subjectType == consts.SubjectComment {
		return "评论"
	}
	return "帖子"
}

func toStatsDTO(c ledger.Counters) *dto.ReactionStatsDTO {
	return &dto.ReactionStatsDTO{
		Like:  c.Like,
		Love:  c.Love,
		Haha:  c.Haha,
		Wow:   c.Wow,
		Sad:   c.Sad,
		Angry: c.Angry,
		Total: c.TotalReactions,
	}
}

func statsToHash(stats *dto.ReactionStatsDTO) map[string]interface{} {
	return map[string]interface{}{
		string(ledger.Like):  stats.Like,
		string(ledger.Love):  stats.Love,
		string(ledger.Haha):  stats.Haha,
		string(ledger.Wow):   stats.Wow,
		string(ledger.Sad):   stats.Sad,
		string(ledger.Angry): stats.Angry,
		"total":              stats.Total,
	}
}

func statsFromHash(fields map[string]string) (*dto.ReactionStatsDTO, bool) {
	values := make(map[string]int64, len(fields))
	for _, name := range []string{"like", "love", "haha", "wow", "sad", "angry", "total"} {
		n, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			return nil, false
		}
		values[name] = n
	}
	return &dto.ReactionStatsDTO{
		Like:  values["like"],
		Love:  values["love"],
		Haha:  values["haha"],
		Wow:   values["wow"],
		Sad:   values["sad"],
		Angry: values["angry"],
		Total: values["total"],
	}, true
}
