package exhibit

import "time"

type Exhibition struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	GalleryID   uint       `gorm:"column:gallery_id;not null;index" json:"gallery_id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description,omitempty"`
	StartDate   *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"column:end_date;index" json:"end_date,omitempty"`
	ImagePath   string     `gorm:"column:image_path" json:"image_path,omitempty"`
	PosterPath  *string    `gorm:"column:poster_path" json:"poster_path,omitempty"`
	LikeCount   int        `gorm:"column:like_count;not null;default:0;index" json:"like_count"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Exhibition) TableName() string { return "exhibition" }

type ExhibitionLike struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"column:user_id;not null;uniqueIndex:idx_exhibition_like_user" json:"user_id"`
	ExhibitionID uint      `gorm:"column:exhibition_id;not null;uniqueIndex:idx_exhibition_like_user;index" json:"exhibition_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (ExhibitionLike) TableName() string { return "exhibition_like" }
