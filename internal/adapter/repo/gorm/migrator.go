package gormrepo

import (
	"fmt"

	"lifeline/internal/adapter/repo/gorm/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the three engine tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.RunState{}, &model.TurnExecution{}, &model.RunEvent{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
