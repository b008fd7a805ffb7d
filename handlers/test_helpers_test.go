package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"catering-backend/catalog"
	"catering-backend/middleware"
	"catering-backend/models"
	"catering-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// One connection so every goroutine sees the same in-memory tables.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	// Raw DDL because the model tags carry PostgreSQL defaults like gen_random_uuid().
	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	testDB.Exec("DELETE FROM cart_slots")
	testDB.Exec("DELETE FROM gallery_images")
	testDB.Exec("DELETE FROM categories")
	testDB.Exec("DELETE FROM refresh_tokens")
	testDB.Exec("DELETE FROM users")
	return testDB
}

func createSQLiteTables(db *gorm.DB) error {
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
		`CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON "users"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "refresh_tokens" (
			"id" TEXT PRIMARY KEY,
			"user_id" TEXT NOT NULL,
			"token" TEXT NOT NULL UNIQUE,
			"expires_at" DATETIME NOT NULL,
			"revoked_at" DATETIME,
			"created_at" DATETIME,
			CONSTRAINT fk_refresh_tokens_user FOREIGN KEY ("user_id") REFERENCES "users"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON "refresh_tokens"("user_id")`,

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
		`CREATE INDEX IF NOT EXISTS idx_categories_deleted_at ON "categories"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "gallery_images" (
			"id" TEXT PRIMARY KEY,
			"title" TEXT NOT NULL,
			"caption" TEXT,
			"image" TEXT NOT NULL,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gallery_images_deleted_at ON "gallery_images"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "cart_slots" (
			"key" TEXT PRIMARY KEY,
			"value" TEXT NOT NULL,
			"updated_at" DATETIME
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// ==================== Seed Helpers ====================

// seedTestUser creates a user with the given role and returns it along with a valid JWT token.
func seedTestUser(db *gorm.DB, email, role string) (models.User, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
		Name:     "Test User",
		Role:     role,
	}
	db.Create(&user)

	token, _ := utils.GenerateToken(user.ID, user.Email, user.Role)
	return user, token
}

func seedCategory(db *gorm.DB, name string) models.Category {
	cat := models.Category{
		ID:   uuid.New(),
		Name: name,
	}
	db.Create(&cat)
	return cat
}

func seedGallery(db *gorm.DB, title string, active bool) models.GalleryImage {
	img := models.GalleryImage{
		ID:       uuid.New(),
		Title:    title,
		Image:    "https://storage.googleapis.com/test-bucket/gallery/" + title + ".jpg",
		IsActive: active,
	}
	db.Create(&img)
	return img
}

func floatPtr(v float64) *float64 { return &v }

// menuFixture is a small menu covering plain, optioned and bundle items.
func menuFixture() []catalog.Item {
	return []catalog.Item{
		{
			ID: "samosa", Name: "Samosa Tray", Category: "Starters",
			Price: 12, Stock: 40, MinQty: 10, Unit: "pcs", IsAvailable: true,
		},
		{
			ID: "curry", Name: "Curry Pot", Category: "Mains",
			Price: 30, Stock: 10, MinQty: 1, IsAvailable: true,
			Options: &catalog.Options{Title: "Size", Choices: []string{"Small", "Large ($45)"}},
		},
		{
			ID: "pizza", Name: "Pizza Party", Category: "Mains",
			Price: 20, Stock: 5, MinQty: 1, MixLimit: 2, IsAvailable: true,
			Options: &catalog.Options{Title: "Flavours", Choices: []string{"Margherita", "Pepperoni ($24)", "Mixed"}},
		},
		{
			ID: "cake", Name: "Sheet Cake", Category: "Desserts",
			Price: 40, Stock: 0, MinQty: 1, IsAvailable: true,
		},
		{
			ID: "punch", Name: "Fruit Punch", Category: "Drinks",
			Price: 15, Stock: 8, MinQty: 1, IsAvailable: false,
		},
	}
}

func newTestCatalog(items ...catalog.Item) *catalog.Catalog {
	cat := catalog.New()
	cat.Replace(items)
	return cat
}

// ==================== Router Setup Helpers ====================

func setupAuthRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	authHandler := &AuthHandler{DB: db}

	api := r.Group("/api")
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.RefreshTokenHandler)
	api.POST("/auth/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/auth/profile", authHandler.GetProfile)
	protected.PUT("/auth/password", authHandler.ChangePassword)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	admin.GET("/users", authHandler.ListUsers)
	admin.POST("/users", authHandler.CreateStaff)
	admin.PUT("/users/:id", authHandler.UpdateUser)

	return r
}

func setupCategoryRouter(db *gorm.DB, cat *catalog.Catalog) *gin.Engine {
	r := gin.New()
	h := &CategoryHandler{DB: db, Catalog: cat}

	api := r.Group("/api")
	api.GET("/categories", h.GetCategories)
	api.GET("/categories/:id", h.GetCategory)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)

	return r
}

func setupGalleryRouter(db *gorm.DB, storage *mockStorage) *gin.Engine {
	r := gin.New()
	h := &GalleryHandler{DB: db, Storage: storage}

	api := r.Group("/api")
	api.GET("/gallery", h.GetGallery)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.StaffMiddleware())
	admin.GET("/gallery", h.GetAllGallery)
	admin.POST("/gallery", h.CreateGalleryImage)
	admin.PUT("/gallery/:id", h.UpdateGalleryImage)
	admin.DELETE("/gallery/:id", h.DeleteGalleryImage)

	return r
}

func setupMenuRouter(h *MenuHandler) *gin.Engine {
	r := gin.New()

	api := r.Group("/api")
	api.GET("/menu", h.GetMenu)
	api.GET("/menu/:id", h.GetMenuItem)

	staff := api.Group("/admin")
	staff.Use(middleware.AuthMiddleware(), middleware.StaffMiddleware())
	staff.GET("/menu", h.GetAdminMenu)
	staff.POST("/menu", h.CreateMenuItem)
	staff.PUT("/menu/:id", h.UpdateMenuItem)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	admin.DELETE("/menu/:id", h.DeleteMenuItem)
	admin.POST("/menu/import", h.ImportMenu)
	admin.GET("/menu/import/:jobId", h.GetImportJob)

	return r
}

func setupCartRouter(h *CartHandler, p *PlanHandler) *gin.Engine {
	r := gin.New()

	shop := r.Group("/api")
	shop.Use(middleware.CartSession())
	shop.GET("/cart", h.GetCart)
	shop.POST("/cart", h.AddToCart)
	shop.POST("/cart/mix", h.AddMix)
	shop.PATCH("/cart/:cartId", h.UpdateQuantity)
	shop.DELETE("/cart/:cartId", h.RemoveFromCart)
	shop.DELETE("/cart", h.ClearCart)
	shop.GET("/cart/checkout", h.Checkout)
	shop.POST("/cart/checkout", h.Checkout)
	if p != nil {
		shop.POST("/plans", p.GeneratePlan)
		shop.POST("/plans/accept", p.AcceptPlan)
	}

	return r
}

// ==================== Request Helpers ====================

// jsonRequest creates an HTTP request with JSON body.
func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// authRequest creates an HTTP request with JSON body and Authorization header.
func authRequest(method, url string, body interface{}, token string) *http.Request {
	req := jsonRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// sessionRequest creates a JSON request bound to a cart session.
func sessionRequest(method, url string, body interface{}, session string) *http.Request {
	req := jsonRequest(method, url, body)
	req.Header.Set(middleware.CartSessionHeader, session)
	return req
}

// multipartRequest creates a multipart form request with the given fields and file uploads.
// files maps form field names to filenames; dummy image data is used.
// Pass token "" to skip the Authorization header.
func multipartRequest(method, url string, fields map[string]string, files map[string]string, token string) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, val := range fields {
		_ = writer.WriteField(key, val)
	}

	for fieldName, filename := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fieldName, filename))
		h.Set("Content-Type", "image/jpeg")

		part, err := writer.CreatePart(h)
		if err != nil {
			panic("failed to create multipart file part: " + err.Error())
		}
		part.Write([]byte("fake image data"))
	}

	writer.Close()

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// ==================== Response Helpers ====================

// parseResponse reads the response body into a map.
func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// parseResponseArray reads the response body into a slice.
func parseResponseArray(w *httptest.ResponseRecorder) []interface{} {
	var result []interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}
