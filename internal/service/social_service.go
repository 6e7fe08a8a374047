package service

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/model"
	"Inkwell/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"
)

// SocialService 关注与转发；通知由 binlog 消费者在行写入后触发
type SocialService interface {
	Follow(ctx context.Context, followerID, followingID uint64) error
	Unfollow(ctx context.Context, followerID, followingID uint64) error
	SharePost(ctx context.Context, userID, postID uint64) (*dto.ShareDTO, error)
	OnFollowed(ctx context.Context, followerID, followingID uint64) bool
	OnShared(ctx context.Context, userID, postID, shareID uint64) bool
}

type socialServiceImpl struct {
	userFollowRepo repository.UserFollowRepo
	userRepo       repository.UserRepo
	postRepo       repository.PostRepo
	notifier       NotificationService
}

func NewSocialService(
	userFollowRepo repository.UserFollowRepo,
	userRepo repository.UserRepo,
	postRepo repository.PostRepo,
	notifier NotificationService,
) SocialService {
	return &socialServiceImpl{
		userFollowRepo: userFollowRepo,
		userRepo:       userRepo,
		postRepo:       postRepo,
		notifier:       notifier,
	}
}

func (s *socialServiceImpl) Follow(ctx context.Context, followerID, followingID uint64) error {
	if followerID == followingID {
		return ErrUserFollowSelf
	}

	target, err := s.userRepo.GetUserById(ctx, followingID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}

	existing, err := s.userFollowRepo.GetUserFollow(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserFollowExist
	}

	err = s.userFollowRepo.CreateUserFollow(ctx, &model.UserFollow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	})
	if isDuplicateError(err) {
		return ErrUserFollowExist
	}
	return err
}

func (s *socialServiceImpl) Unfollow(ctx context.Context, followerID, followingID uint64) error {
	return s.userFollowRepo.DeleteUserFollow(ctx, &model.UserFollow{
		FollowerID:  followerID,
		FollowingID: followingID,
	})
}

// SharePost 转发帖子，转发数与转发记录同时写入
func (s *socialServiceImpl) SharePost(ctx context.Context, userID, postID uint64) (*dto.ShareDTO, error) {
	share := &model.PostShare{PostID: postID, UserID: userID, CreatedAt: time.Now()}
	err := withTxRetry(ctx, "share_post", func() error {
		share.ID = 0
		err := s.postRepo.CreateShare(ctx, share)
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return ErrPostNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.ShareDTO{ShareID: share.ID, PostID: postID}, nil
}

// OnFollowed 通知被关注者
func (s *socialServiceImpl) OnFollowed(ctx context.Context, followerID, followingID uint64) bool {
	return s.notifier.Notify(ctx, NotifyParams{
		RecipientID: followingID,
		SenderID:    followerID,
		Type:        NotifyFollow,
		Message:     "关注了你",
		TargetID:    followerID,
	})
}

// OnShared 通知帖子作者，帖子已删除时忽略
func (s *socialServiceImpl) OnShared(ctx context.Context, userID, postID, shareID uint64) bool {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		log.WarnContext(ctx, "failed to get post for share notification", "postID", postID, "err", err)
		return false
	}
	if post == nil {
		return true
	}
	return s.notifier.Notify(ctx, NotifyParams{
		RecipientID: post.UserID,
		SenderID:    userID,
		Type:        NotifyShare,
		Message:     "转发了你的帖子",
		PostID:      postID,
		TargetID:    shareID,
	})
}
