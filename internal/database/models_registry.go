package database

import "gratitude/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM
// models, parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Company{},
		&models.Thanks{},
		&models.Like{},
		&models.Comment{},
		&models.Report{},
		&models.UserFollow{},
		&models.FollowCompany{},
	}
}
