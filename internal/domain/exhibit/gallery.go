package exhibit

import "time"

type Gallery struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;index" json:"name"`
	Address     string    `gorm:"column:address" json:"address,omitempty"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	ImagePath   string    `gorm:"column:image_path" json:"image_path,omitempty"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Gallery) TableName() string { return "gallery" }
