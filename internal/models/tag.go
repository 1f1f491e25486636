package models

type Tag struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`

	// Relations
	Tasks []Task `gorm:"many2many:task_tags" json:"-"`
}
