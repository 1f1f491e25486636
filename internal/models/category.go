package models

// Category is a user-defined grouping for tasks. Categories form a tree via
// ParentID; acyclicity is checked at the service layer, not by the store.
type Category struct {
	ID       uint64  `gorm:"primarykey" json:"id"`
	Name     string  `gorm:"type:varchar(50);not null" json:"name"`
	ParentID *uint64 `gorm:"column:sub_category_id;index" json:"sub_category"`
	UserID   *uint64 `gorm:"index" json:"user"`

	// Relations
	Parent *Category `gorm:"foreignKey:ParentID" json:"-"`
	User   *User     `gorm:"foreignKey:UserID" json:"-"`
	Tasks  []Task    `gorm:"foreignKey:CategoryID" json:"-"`
}
