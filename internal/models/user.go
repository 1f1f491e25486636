package models

import "time"

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255)" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"is_superuser"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`

	// Relations
	Groups       []Group          `gorm:"many2many:user_groups" json:"-"`
	CreatedTasks []Task           `gorm:"foreignKey:CreatedByID" json:"-"`
	Assignments  []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
}
