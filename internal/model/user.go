package model

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex:idx_username;not null"`
	Nickname     string    `gorm:"type:varchar(50);not null;default:''"`
	AvatarURL    string    `gorm:"type:varchar(255);not null;default:''"`
	WarningCount int       `gorm:"not null;default:0"`                         // 只增不减
	Status       string    `gorm:"type:varchar(16);not null;default:'active'"` // active / locked
	IsDelete     bool      `gorm:"type:tinyint(1);default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	UserRoles []UserRole `gorm:"foreignKey:UserID;references:ID"`
}

func (User) TableName() string {
	return "users"
}
