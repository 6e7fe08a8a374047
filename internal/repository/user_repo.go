package repository

import (
	"Inkwell/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetUserById(ctx context.Context, id uint64) (*model.User, error)
	GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error)
	GetUserIDsByRole(ctx context.Context, roleName string) ([]uint64, error)
	CreateUser(ctx context.Context, user *model.User, roles []*model.UserRole) error
	UpdateUserStatus(ctx context.Context, id uint64, status string) (int64, error)
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

func (s *UserRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Preload("UserRoles.Role").
		Where("is_delete = ?", false).
		First(user, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return user, nil
}

func (s *UserRepoImpl) GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error) {
	users := make([]*model.User, 0)
	if len(ids) == 0 {
		return users, nil
	}
	result := s.db.WithContext(ctx).
		Select("id", "username", "nickname", "avatar_url", "status").
		Where("id IN ?", ids).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

// GetUserIDsByRole 获取拥有指定角色的全部有效用户
func (s *UserRepoImpl) GetUserIDsByRole(ctx context.Context, roleName string) ([]uint64, error) {
	ids := make([]uint64, 0)
	result := s.db.WithContext(ctx).
		Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Joins("JOIN users ON users.id = user_roles.user_id").
		Where("roles.name = ? AND users.is_delete = ?", roleName, false).
		Distinct().
		Pluck("user_roles.user_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

func (s *UserRepoImpl) CreateUser(ctx context.Context, user *model.User, roles []*model.UserRole) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(user); result.Error != nil {
			return result.Error
		}
		if len(roles) == 0 {
			return nil
		}

		for _, role := range roles {
			role.UserID = user.ID
		}
		if result := tx.Create(roles); result.Error != nil {
			return result.Error
		}

		return nil
	})
}

// UpdateUserStatus 管理员手动封禁或解封，不影响警告次数
func (s *UserRepoImpl) UpdateUserStatus(ctx context.Context, id uint64, status string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND is_delete = ?", id, false).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})

	return result.RowsAffected, result.Error
}
