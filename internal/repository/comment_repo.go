package repository

import (
	"Inkwell/internal/model"
	"Inkwell/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type CommentRepo interface {
	CreateComment(ctx context.Context, comment *model.PostComment) error
	GetCommentByID(ctx context.Context, id uint64) (*model.PostComment, error)
	ListVisibleByPostID(ctx context.Context, postID uint64) ([]*model.PostComment, error)
	DeleteComment(ctx context.Context, comment *model.PostComment) error
	UpdateCommentStatus(ctx context.Context, comment *model.PostComment, status string) error
}

type CommentRepoImpl struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepo {
	return &CommentRepoImpl{db: db}
}

// CreateComment 写入评论并累加帖子评论数，回复的父评论须为本帖可见的一级评论
func (s *CommentRepoImpl) CreateComment(ctx context.Context, comment *model.PostComment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSubject(tx, consts.SubjectPost, comment.PostID); err != nil {
			return err
		}
		if !comment.IsTopLevel() {
			ok, err := lockTopLevelComment(tx, comment.PostID, comment.ParentID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrParentMissing
			}
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
}

// GetCommentByID 获取未删除的评论，不存在时返回 nil
func (s *CommentRepoImpl) GetCommentByID(ctx context.Context, id uint64) (*model.PostComment, error) {
	var comment model.PostComment
	err := s.db.WithContext(ctx).Where("is_deleted = ?", false).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListVisibleByPostID 获取帖子下全部可见评论，按创建时间升序
func (s *CommentRepoImpl) ListVisibleByPostID(ctx context.Context, postID uint64) ([]*model.PostComment, error) {
	comments := make([]*model.PostComment, 0)
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND status = ? AND is_deleted = ?", postID, consts.CommentStatusVisible, false).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment 软删除评论，一级评论连同其回复一并删除；被删评论若为置顶则取消置顶
func (s *CommentRepoImpl) DeleteComment(ctx context.Context, comment *model.PostComment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSubject(tx, consts.SubjectPost, comment.PostID); err != nil {
			return err
		}

		q := tx.Model(&model.PostComment{}).Where("is_deleted = ?", false)
		if comment.IsTopLevel() {
			q = q.Where("id = ? OR parent_id = ?", comment.ID, comment.ID)
		} else {
			q = q.Where("id = ?", comment.ID)
		}
		result := q.Updates(map[string]interface{}{"is_deleted": true, "updated_at": time.Now()})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			n := result.RowsAffected
			err := tx.Model(&model.Post{}).
				Where("id = ?", comment.PostID).
				UpdateColumn("comments_count", gorm.Expr("CASE WHEN comments_count < ? THEN 0 ELSE comments_count - ? END", n, n)).Error
			if err != nil {
				return err
			}
		}

		return clearPin(tx, comment.PostID, comment.ID)
	})
}

// UpdateCommentStatus 修改评论可见性，隐藏置顶评论时同步取消置顶
func (s *CommentRepoImpl) UpdateCommentStatus(ctx context.Context, comment *model.PostComment, status string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSubject(tx, consts.SubjectPost, comment.PostID); err != nil {
			return err
		}
		err := tx.Model(&model.PostComment{}).
			Where("id = ?", comment.ID).
			Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
		if err != nil {
			return err
		}
		if status == consts.CommentStatusVisible {
			return nil
		}
		return clearPin(tx, comment.PostID, comment.ID)
	})
}

func clearPin(tx *gorm.DB, postID, commentID uint64) error {
	return tx.Model(&model.Post{}).
		Where("id = ? AND pinned_comment_id = ?", postID, commentID).
		UpdateColumn("pinned_comment_id", nil).Error
}
