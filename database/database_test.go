package database

import (
	"os"
	"testing"
	"time"

	"catering-backend/cart"
	"catering-backend/catalog"
	"catering-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"name" TEXT,
			"role" TEXT DEFAULT 'staff',
			"is_blocked" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "categories" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL UNIQUE,
			"icon" TEXT,
			"description" TEXT,
			"sort_order" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "cart_slots" (
			"key" TEXT PRIMARY KEY,
			"value" TEXT NOT NULL,
			"updated_at" DATETIME
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func TestCreateDefaultAdminNew(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "testadmin@test.com")
	os.Setenv("ADMIN_PASSWORD", "testpassword123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	if err := CreateDefaultAdmin(db); err != nil {
		t.Fatal(err)
	}

	var user models.User
	if err := db.Where("email = ?", "testadmin@test.com").First(&user).Error; err != nil {
		t.Fatal("admin user not created")
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role 'admin', got '%s'", user.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("testpassword123")) != nil {
		t.Error("stored password does not match")
	}
}

func TestCreateDefaultAdminAlreadyExists(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "existing@test.com")
	os.Setenv("ADMIN_PASSWORD", "password123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	if err := CreateDefaultAdmin(db); err != nil {
		t.Fatal(err)
	}
	if err := CreateDefaultAdmin(db); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", "existing@test.com").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 admin, got %d", count)
	}
}

func TestCreateDefaultAdminRandomPassword(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "random@test.com")
	os.Unsetenv("ADMIN_PASSWORD")
	defer os.Unsetenv("ADMIN_EMAIL")

	if err := CreateDefaultAdmin(db); err != nil {
		t.Fatal(err)
	}

	var user models.User
	if err := db.Where("email = ?", "random@test.com").First(&user).Error; err != nil {
		t.Fatal("admin not created with random password")
	}
}

func TestSeedCategoriesOnlyWhenEmpty(t *testing.T) {
	db := setupTestDB(t)

	if err := SeedCategories(db); err != nil {
		t.Fatal(err)
	}
	if err := SeedCategories(db); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.Category{}).Count(&count)
	if int(count) != len(defaultCategories) {
		t.Errorf("expected %d categories, got %d", len(defaultCategories), count)
	}
}

func TestSlotStoreGetMissing(t *testing.T) {
	store := NewSlotStore(setupTestDB(t))

	_, ok, err := store.Get("catering_cart:nobody")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected missing slot")
	}
}

func TestSlotStoreSetOverwrites(t *testing.T) {
	db := setupTestDB(t)
	store := NewSlotStore(db)

	if err := store.Set("k", "[1]"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("k", "[2]"); err != nil {
		t.Fatal(err)
	}

	value, ok, err := store.Get("k")
	if err != nil || !ok {
		t.Fatalf("expected slot, got ok=%v err=%v", ok, err)
	}
	if value != "[2]" {
		t.Errorf("expected '[2]', got %s", value)
	}

	var count int64
	db.Model(&models.CartSlot{}).Count(&count)
	if count != 1 {
		t.Errorf("expected one row, got %d", count)
	}
}

func TestSlotStorePurgeBefore(t *testing.T) {
	db := setupTestDB(t)
	store := NewSlotStore(db)

	store.Set("old", "[]")
	db.Model(&models.CartSlot{}).Where(`"key" = ?`, "old").Update("updated_at", time.Now().Add(-48*time.Hour))
	store.Set("fresh", "[]")

	n, err := store.PurgeBefore(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged slot, got %d", n)
	}
	if _, ok, _ := store.Get("fresh"); !ok {
		t.Error("fresh slot should survive")
	}
}

func TestLedgerSurvivesReopenOnSlotStore(t *testing.T) {
	store := NewSlotStore(setupTestDB(t))
	item := catalog.Item{ID: "lasagna", Name: "Lasagna", Price: 45, MinQty: 2, Unit: "Tray", Stock: 5, IsAvailable: true}

	l := cart.Open(store, cart.StorageKey("s1"))
	if _, err := l.AddToCart(item, 3, "", nil); err != nil {
		t.Fatal(err)
	}

	reopened := cart.Open(store, cart.StorageKey("s1"))
	line, ok := reopened.Line("lasagna")
	if !ok {
		t.Fatal("expected line after reopen")
	}
	if line.Quantity != 3 || line.MinQty != 2 {
		t.Errorf("unexpected line %+v", line)
	}
}
