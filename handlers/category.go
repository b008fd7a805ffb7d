package handlers

import (
	"net/http"
	"strings"

	"catering-backend/catalog"
	"catering-backend/models"
	"catering-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	DB      *gorm.DB
	Catalog *catalog.Catalog
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required,max=60"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

func (h *CategoryHandler) itemsIn(name string) []catalog.Item {
	return h.Catalog.ByCategory()[name]
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.DB.Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory returns the category with its items from the live menu.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	var category models.Category
	if err := h.DB.Where("id = ?", c.Param("id")).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	items := h.itemsIn(category.Name)
	if items == nil {
		items = []catalog.Item{}
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          category.ID,
		"name":        category.Name,
		"icon":        category.Icon,
		"description": category.Description,
		"sort_order":  category.SortOrder,
		"items":       items,
	})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	category := models.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Icon:        req.Icon,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}

	var count int64
	h.DB.Model(&models.Category{}).Where("name = ?", category.Name).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	if err := h.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var category models.Category
	if err := h.DB.Where("id = ?", c.Param("id")).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name != category.Name {
		if n := len(h.itemsIn(category.Name)); n > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Cannot rename a category that still has menu items",
				"item_count": n,
			})
			return
		}
	}

	category.Name = name
	category.Icon = req.Icon
	category.Description = req.Description
	category.SortOrder = req.SortOrder

	if err := h.DB.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	var category models.Category
	if err := h.DB.Where("id = ?", c.Param("id")).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	if n := len(h.itemsIn(category.Name)); n > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Cannot delete category with menu items",
			"message":    "Please move or delete the menu items first",
			"item_count": n,
		})
		return
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
