package bootstrap

import (
	"errors"
	"fmt"

	"anoa.com/lostfound/internal/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Item{},
		&entity.Claim{},
		&entity.Notification{},
	)
}

// SeedAdminUser creates the development admin account once. An empty password
// skips seeding.
func SeedAdminUser(db *gorm.DB, email, password string) error {
	if password == "" {
		zap.L().Info("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing entity.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		zap.L().Info("admin user already exists, skipping seed", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := entity.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashed),
		Role:         entity.RoleAdmin,
		Bio:          "System Administrator",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	zap.L().Info("admin user seeded", zap.String("email", email))
	return nil
}
