package models

type Group struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`

	// Relations
	Users []User `gorm:"many2many:user_groups" json:"-"`
}
