package models

// Status is a row-backed task state ("Open", "Done", ...) so new states can
// be added at runtime without a schema change.
type Status struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`

	// Relations
	Tasks []Task `gorm:"foreignKey:StatusID" json:"-"`
}
