package repository

import (
	"Inkwell/internal/model"
	"Inkwell/internal/pkg/consts"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSubjectNotFound 帖子/评论不存在、已删除或已隐藏
var ErrSubjectNotFound = errors.New("subject not found")

// ErrParentMissing 回复目标不是本帖可见的一级评论
var ErrParentMissing = errors.New("parent comment missing")

// ErrPinTargetInvalid 置顶目标不是本帖可见的一级评论
var ErrPinTargetInvalid = errors.New("pin target invalid")

// ErrUnknownSubjectType 不支持的主体类型
var ErrUnknownSubjectType = errors.New("unknown subject type")

// SubjectOwner 被锁定主体的归属信息
type SubjectOwner struct {
	ID     uint64
	UserID uint64
	PostID uint64
}

// SubjectTable 主体类型对应的表
func SubjectTable(subjectType string) (string, error) {
	switch subjectType {
	case consts.SubjectPost:
		return "posts", nil
	case consts.SubjectComment:
		return "post_comments", nil
	}
	return "", ErrUnknownSubjectType
}

// lockSubject 在事务内对主体行加排他锁，同一主体上的计数读改写因此串行
func lockSubject(tx *gorm.DB, subjectType string, id uint64) (*SubjectOwner, error) {
	table, err := SubjectTable(subjectType)
	if err != nil {
		return nil, err
	}

	q := tx.Table(table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = ?", id, false)
	if subjectType == consts.SubjectComment {
		q = q.Select("id", "user_id", "post_id").Where("status = ?", consts.CommentStatusVisible)
	} else {
		q = q.Select("id", "user_id")
	}

	var owner SubjectOwner
	if err = q.Take(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	if subjectType == consts.SubjectPost {
		owner.PostID = owner.ID
	}
	return &owner, nil
}

// lockTopLevelComment 在事务内锁定本帖可见的一级评论，不存在时返回 false
func lockTopLevelComment(tx *gorm.DB, postID, commentID uint64) (bool, error) {
	var ids []uint64
	err := tx.Model(&model.PostComment{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND post_id = ? AND parent_id = 0 AND status = ? AND is_deleted = ?",
			commentID, postID, consts.CommentStatusVisible, false).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}
