package models

import "time"

// Task is the central entity. CreatedByID is set once at creation and never
// changes; UpdatedAt stays nil until the first mutation. Tasks nest via
// ParentID (wire name sub_task); deleting a task that other tasks reference
// as their parent is rejected at the service layer.
type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(50);not null" json:"name"`
	Description *string    `gorm:"type:varchar(500)" json:"description"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	StatusID    *uint64    `gorm:"index" json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
	ParentID    *uint64    `gorm:"column:sub_task_id;index" json:"sub_task"`
	CategoryID  *uint64    `gorm:"column:task_category_id;index" json:"task_category"`
	CreatedByID uint64     `gorm:"not null;index" json:"created_by"`

	// Relations
	Status      *Status          `gorm:"foreignKey:StatusID" json:"-"`
	Parent      *Task            `gorm:"foreignKey:ParentID" json:"-"`
	Category    *Category        `gorm:"foreignKey:CategoryID" json:"-"`
	CreatedBy   User             `gorm:"foreignKey:CreatedByID" json:"-"`
	Tags        []Tag            `gorm:"many2many:task_tags" json:"-"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"-"`
}
