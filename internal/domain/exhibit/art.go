package exhibit

import "time"

// Art is a single artwork. The Docent* columns hold the generated narration;
// they start null and are overwritten in place by each successful generation.
type Art struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ExhibitionID    uint      `gorm:"column:exhibition_id;not null;index" json:"exhibition_id"`
	ArtistName      string    `gorm:"column:artist_name" json:"artist_name,omitempty"`
	Title           string    `gorm:"column:title;not null" json:"title"`
	Description     string    `gorm:"column:description;type:text" json:"description,omitempty"`
	DocentText      string    `gorm:"column:docent_text;type:text" json:"docent_text,omitempty"`
	ImagePath       string    `gorm:"column:image_path" json:"image_path,omitempty"`
	DocentAudioPath *string   `gorm:"column:docent_audio_path" json:"docent_audio_path,omitempty"`
	DocentVideoPath *string   `gorm:"column:docent_video_path" json:"docent_video_path,omitempty"`
	DocentScript    *string   `gorm:"column:docent_script;type:text" json:"docent_script,omitempty"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (Art) TableName() string { return "art" }

// DocentRecord is the persisted output of a docent run.
type DocentRecord struct {
	AudioPath *string
	VideoPath *string
	Script    *string
}
