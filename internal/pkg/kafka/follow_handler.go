package kafka

import (
	"Inkwell/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// UserFollowsHandler 新增关注关系后通知被关注者
type UserFollowsHandler struct {
	socialSvc service.SocialService
}

func NewUserFollowsHandler(socialSvc service.SocialService) *UserFollowsHandler {
	return &UserFollowsHandler{socialSvc: socialSvc}
}

func (s *UserFollowsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("user follows consumer setup")
	return nil
}

func (s *UserFollowsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("user follows consumer cleanup")
	return nil
}

func (s *UserFollowsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-user-follows consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-user-follows process batch error", "err", err)
		return err
	}
	log.Info("topic-user-follows consume claim end")
	return nil
}

func (s *UserFollowsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "user_follows")
	if err != nil || canalMsg == nil {
		return nil
	}
	// 取消关注不产生通知
	if canalMsg.Type != INSERT {
		return nil
	}

	for _, row := range canalMsg.Data {
		followerID := StrToUint64(row["follower_id"])
		followingID := StrToUint64(row["following_id"])
		if followerID == 0 || followingID == 0 {
			continue
		}
		s.socialSvc.OnFollowed(ctx, followerID, followingID)
		log.InfoContext(ctx, "user follow notified", "followerID", followerID, "followingID", followingID)
	}
	return nil
}
