package routes

import (
	"catering-backend/cart"
	"catering-backend/catalog"
	"catering-backend/firebase"
	"catering-backend/handlers"
	"catering-backend/middleware"
	"catering-backend/planner"
	"catering-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. LoginLimiter and PlanLimiter may
// be nil, in which case those routes are not rate limited.
type Deps struct {
	DB       *gorm.DB
	Storage  firebase.StorageClient
	Repo     catalog.Repository
	Catalog  *catalog.Catalog
	Registry *cart.Registry
	Planner  *planner.Planner
	Jobs     *utils.JobStore

	LoginLimiter *middleware.RateLimiter
	PlanLimiter  *middleware.RateLimiter

	Currency       string
	WhatsAppNumber string
	NotifyEmail    string
}

func SetupRoutes(r *gin.Engine, d Deps) {
	authHandler := &handlers.AuthHandler{DB: d.DB}
	categoryHandler := &handlers.CategoryHandler{DB: d.DB, Catalog: d.Catalog}
	galleryHandler := &handlers.GalleryHandler{DB: d.DB, Storage: d.Storage}
	menuHandler := &handlers.MenuHandler{Repo: d.Repo, Catalog: d.Catalog, Storage: d.Storage, Jobs: d.Jobs}
	cartHandler := &handlers.CartHandler{
		Registry:       d.Registry,
		Catalog:        d.Catalog,
		Currency:       d.Currency,
		WhatsAppNumber: d.WhatsAppNumber,
		NotifyEmail:    d.NotifyEmail,
	}
	planHandler := &handlers.PlanHandler{Planner: d.Planner, Catalog: d.Catalog, Registry: d.Registry, Currency: d.Currency}

	api := r.Group("/api")
	{
		login := []gin.HandlerFunc{authHandler.Login}
		if d.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{d.LoginLimiter.Middleware()}, login...)
		}
		api.POST("/auth/login", login...)
		api.POST("/auth/refresh", authHandler.RefreshTokenHandler)
		api.POST("/auth/logout", authHandler.Logout)

		api.GET("/menu", menuHandler.GetMenu)
		api.GET("/menu/:id", menuHandler.GetMenuItem)

		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:id", categoryHandler.GetCategory)

		api.GET("/gallery", galleryHandler.GetGallery)
	}

	// Anonymous shoppers, keyed by the X-Cart-Session header
	shop := api.Group("")
	shop.Use(middleware.CartSession())
	{
		shop.GET("/cart", cartHandler.GetCart)
		shop.POST("/cart", cartHandler.AddToCart)
		shop.POST("/cart/mix", cartHandler.AddMix)
		shop.PATCH("/cart/:cartId", cartHandler.UpdateQuantity)
		shop.DELETE("/cart/:cartId", cartHandler.RemoveFromCart)
		shop.DELETE("/cart", cartHandler.ClearCart)
		shop.GET("/cart/checkout", cartHandler.Checkout)
		shop.POST("/cart/checkout", cartHandler.Checkout)

		if d.Planner != nil {
			generate := []gin.HandlerFunc{planHandler.GeneratePlan}
			if d.PlanLimiter != nil {
				generate = append([]gin.HandlerFunc{d.PlanLimiter.KeyedMiddleware(middleware.CartSessionID)}, generate...)
			}
			shop.POST("/plans", generate...)
			shop.POST("/plans/accept", planHandler.AcceptPlan)
		}
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/password", authHandler.ChangePassword)
	}

	// Kitchen staff keep the menu and gallery current
	staff := api.Group("/admin")
	staff.Use(middleware.AuthMiddleware(), middleware.StaffMiddleware())
	{
		staff.GET("/menu", menuHandler.GetAdminMenu)
		staff.POST("/menu", menuHandler.CreateMenuItem)
		staff.PUT("/menu/:id", menuHandler.UpdateMenuItem)

		staff.GET("/gallery", galleryHandler.GetAllGallery)
		staff.POST("/gallery", galleryHandler.CreateGalleryImage)
		staff.PUT("/gallery/:id", galleryHandler.UpdateGalleryImage)
		staff.DELETE("/gallery/:id", galleryHandler.DeleteGalleryImage)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.DELETE("/menu/:id", menuHandler.DeleteMenuItem)
		admin.POST("/menu/import", menuHandler.ImportMenu)
		admin.GET("/menu/import/:jobId", menuHandler.GetImportJob)

		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		admin.GET("/users", authHandler.ListUsers)
		admin.POST("/users", authHandler.CreateStaff)
		admin.PUT("/users/:id", authHandler.UpdateUser)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "menu_items": len(d.Catalog.All())})
	})
}
