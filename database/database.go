package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"catering-backend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=catering port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// gen_random_uuid() comes from pgcrypto on older PostgreSQL versions.
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
			return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
		}
	}

	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.GalleryImage{},
		&models.CartSlot{},
	)
}

// CreateDefaultAdmin makes sure one admin account exists. Without
// ADMIN_PASSWORD a random password is generated and logged once.
func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@catering.local"
	}
	generated := false
	if adminPassword == "" {
		adminPassword = uuid.New().String()
		generated = true
	}

	var existingUser models.User
	err := db.Where("email = ?", adminEmail).First(&existingUser).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		Name:     "Admin User",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	if generated {
		log.Printf("Default admin created: %s (generated password: %s)", adminEmail, adminPassword)
	} else {
		log.Printf("Default admin created: %s", adminEmail)
	}
	return nil
}

var defaultCategories = []models.Category{
	{Name: "Trays", Icon: "tray", SortOrder: 1},
	{Name: "Bundles", Icon: "layers", SortOrder: 2},
	{Name: "Desserts", Icon: "cake", SortOrder: 3},
	{Name: "Drinks", Icon: "cup", SortOrder: 4},
}

// SeedCategories inserts the starter categories into an empty table.
func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	cats := make([]models.Category, len(defaultCategories))
	copy(cats, defaultCategories)
	if err := db.Create(&cats).Error; err != nil {
		return err
	}
	log.Printf("Seeded %d default categories", len(cats))
	return nil
}
