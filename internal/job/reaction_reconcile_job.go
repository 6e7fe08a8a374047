package job

import (
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/logger"
	"Inkwell/internal/pkg/redis"
	"Inkwell/internal/service"
	"context"
	log "log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ReactionReconcileJob 以反应行为准校对近期有变动的主体计数
type ReactionReconcileJob struct {
	reactionSvc service.ReactionService
}

func NewReactionReconcileJob(reactionSvc service.ReactionService) *ReactionReconcileJob {
	return &ReactionReconcileJob{
		reactionSvc: reactionSvc,
	}
}

func (s *ReactionReconcileJob) Run() {
	traceID := "job-reaction-reconcile-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	processingKey := consts.ReactionDirtyKey + ":processing"
	err := redis.Rename(ctx, consts.ReactionDirtyKey, processingKey)
	if err != nil {
		return
	}

	members, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get reaction dirty set error", "err", err)
		return
	}

	log.InfoContext(ctx, "start reconciling reaction counters", "count", len(members))

	driftCount, successCount := 0, 0
	for _, member := range members {
		subjectType, subjectID, ok := parseDirtyMember(member)
		if !ok {
			log.WarnContext(ctx, "invalid reaction dirty member", "member", member)
			continue
		}

		drift, err := s.reactionSvc.Reconcile(ctx, subjectType, subjectID)
		if err != nil {
			log.ErrorContext(ctx, "reconcile reaction counters error", "subject", subjectType, "id", subjectID, "err", err)
			// 留待下一轮
			_ = redis.SAdd(ctx, consts.ReactionDirtyKey, member)
			continue
		}
		if drift {
			driftCount++
		}
		successCount++
	}

	err = redis.DeleteKey(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "delete reaction processing set error", "err", err)
	}

	log.InfoContext(ctx, "reconcile reaction counters success",
		"total_count", len(members),
		"success_count", successCount,
		"drift_count", driftCount)
}

// parseDirtyMember 解析 "post:12" 形式的成员
func parseDirtyMember(member string) (string, uint64, bool) {
	subjectType, rawID, found := strings.Cut(member, ":")
	if !found {
		return "", 0, false
	}
	if subjectType != consts.SubjectPost && subjectType != consts.SubjectComment {
		return "", 0, false
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return subjectType, id, true
}
