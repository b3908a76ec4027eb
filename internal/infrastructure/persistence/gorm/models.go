// Package gorm provides GORM model definitions and repositories
package gorm

import (
	"time"
)

// GeneratedImageModel represents the GORM model for generated recipe images
type GeneratedImageModel struct {
	RecipeID   int       `gorm:"primaryKey;autoIncrement:false"`
	RecipeName string    `gorm:"type:varchar(255);not null"`
	ImageURL   string    `gorm:"type:text;not null"`
	Prompt     string    `gorm:"type:text"`
	Source     string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time
}

// TableName specifies the table name for GeneratedImageModel
func (GeneratedImageModel) TableName() string {
	return "generated_images"
}

// Models lists every model managed by AutoMigrate
func Models() []interface{} {
	return []interface{}{
		&GeneratedImageModel{},
	}
}
