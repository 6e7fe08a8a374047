package repository

import (
	"Inkwell/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type UserFollowRepo interface {
	GetUserFollow(ctx context.Context, userID uint64, followingID uint64) (*model.UserFollow, error)
	CreateUserFollow(ctx context.Context, userFollow *model.UserFollow) error
	DeleteUserFollow(ctx context.Context, userFollow *model.UserFollow) error
}

type UserFollowRepoImpl struct {
	db *gorm.DB
}

func NewUserFollowRepo(db *gorm.DB) UserFollowRepo {
	return &UserFollowRepoImpl{db: db}
}

// GetUserFollow 获取用户的关注关系
func (s *UserFollowRepoImpl) GetUserFollow(ctx context.Context, userID uint64, followingID uint64) (*model.UserFollow, error) {
	var userFollow model.UserFollow
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", userID, followingID).
		First(&userFollow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &userFollow, nil
}

// CreateUserFollow 创建用户的关注关系
func (s *UserFollowRepoImpl) CreateUserFollow(ctx context.Context, userFollow *model.UserFollow) error {
	return s.db.WithContext(ctx).Create(userFollow).Error
}

// DeleteUserFollow 删除用户的关注关系
func (s *UserFollowRepoImpl) DeleteUserFollow(ctx context.Context, userFollow *model.UserFollow) error {
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", userFollow.FollowerID, userFollow.FollowingID).
		Delete(&model.UserFollow{}).Error
}
