package models

import "time"

// TaskAssignment links a task to an assigned user. CreatedByID records who
// made the assignment, which is not necessarily the task's creator.
type TaskAssignment struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	TaskID      uint64    `gorm:"not null;index" json:"task_id"`
	UserID      uint64    `gorm:"not null;index" json:"user"`
	AssignedAt  time.Time `gorm:"autoCreateTime" json:"assigned_at"`
	CreatedByID uint64    `gorm:"not null" json:"created_by"`

	// Relations
	Task      Task `gorm:"foreignKey:TaskID" json:"-"`
	User      User `gorm:"foreignKey:UserID" json:"-"`
	CreatedBy User `gorm:"foreignKey:CreatedByID" json:"-"`
}
