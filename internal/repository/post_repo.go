package repository

import (
	"Inkwell/internal/model"
	"Inkwell/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	SetPinnedComment(ctx context.Context, postID uint64, commentID *uint64) error
	CreateShare(ctx context.Context, share *model.PostShare) error
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s PostRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

// GetPost 获取未删除的帖子，不存在时返回 nil
func (s PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Where("is_deleted = ?", false).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// SetPinnedComment 设置或清除置顶评论，commentID 为 nil 表示取消置顶；
// 置顶目标在锁定帖子后于同一事务内复核
func (s PostRepoImpl) SetPinnedComment(ctx context.Context, postID uint64, commentID *uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSubject(tx, consts.SubjectPost, postID); err != nil {
			return err
		}
		if commentID != nil {
			ok, err := lockTopLevelComment(tx, postID, *commentID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrPinTargetInvalid
			}
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", postID).
			UpdateColumns(map[string]interface{}{"pinned_comment_id": commentID, "updated_at": time.Now()}).Error
	})
}

// CreateShare 记录转发并累加转发数
func (s PostRepoImpl) CreateShare(ctx context.Context, share *model.PostShare) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSubject(tx, consts.SubjectPost, share.PostID); err != nil {
			return err
		}
		if err := tx.Create(share).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", share.PostID).
			UpdateColumn("shares_count", gorm.Expr("shares_count + 1")).Error
	})
}
