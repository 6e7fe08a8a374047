package kafka

import (
	"Inkwell/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// PostSharesHandler 新增转发后通知帖子作者
type PostSharesHandler struct {
	socialSvc service.SocialService
}

func NewPostSharesHandler(socialSvc service.SocialService) *PostSharesHandler {
	return &PostSharesHandler{socialSvc: socialSvc}
}

func (s *PostSharesHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("post shares consumer setup")
	return nil
}

func (s *PostSharesHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("post shares consumer cleanup")
	return nil
}

func (s *PostSharesHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-post-shares consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-post-shares process batch error", "err", err)
		return err
	}
	return nil
}

func (s *PostSharesHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "post_shares")
	if err != nil || canalMsg == nil {
		return nil
	}
	if canalMsg.Type != INSERT {
		return nil
	}

	for _, row := range canalMsg.Data {
		shareID := StrToUint64(row["id"])
		userID := StrToUint64(row["user_id"])
		postID := StrToUint64(row["post_id"])
		if userID == 0 || postID == 0 {
			continue
		}
		s.socialSvc.OnShared(ctx, userID, postID, shareID)
		log.InfoContext(ctx, "post share notified", "shareID", shareID, "postID", postID)
	}
	return nil
}
