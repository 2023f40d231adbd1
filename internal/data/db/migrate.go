package db

import (
	"fmt"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Gallery{},
		&types.Exhibition{},
		&types.ExhibitionLike{},
		&types.Art{},
		&types.JobRun{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
