package handlers

import (
	"errors"
	"net/http"

	"catering-backend/firebase"
	"catering-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GalleryHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
}

// GetGallery lists active photos, newest first.
func (h *GalleryHandler) GetGallery(c *gin.Context) {
	var images []models.GalleryImage
	if err := h.DB.Where("is_active = ?", true).Order("created_at DESC").Find(&images).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gallery"})
		return
	}
	c.JSON(http.StatusOK, images)
}

// GetAllGallery includes hidden photos for the dashboard.
func (h *GalleryHandler) GetAllGallery(c *gin.Context) {
	var images []models.GalleryImage
	if err := h.DB.Order("created_at DESC").Find(&images).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gallery"})
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *GalleryHandler) CreateGalleryImage(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	imageURL, ok, err := uploadImage(c, h.Storage.UploadGalleryImage)
	if !ok {
		return
	}
	if errors.Is(err, errNoImage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}

	image := models.GalleryImage{
		ID:       uuid.New(),
		Title:    title,
		Caption:  c.PostForm("caption"),
		Image:    imageURL,
		IsActive: c.DefaultPostForm("is_active", "true") == "true",
	}

	if err := h.DB.Create(&image).Error; err != nil {
		deleteStoredImage(h.Storage, imageURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save gallery image"})
		return
	}

	c.JSON(http.StatusCreated, image)
}

func (h *GalleryHandler) UpdateGalleryImage(c *gin.Context) {
	var image models.GalleryImage
	if err := h.DB.Where("id = ?", c.Param("id")).First(&image).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gallery image not found"})
		return
	}

	if title := c.PostForm("title"); title != "" {
		image.Title = title
	}
	if caption, ok := c.GetPostForm("caption"); ok {
		image.Caption = caption
	}
	if active, ok := c.GetPostForm("is_active"); ok {
		image.IsActive = active == "true"
	}

	imageURL, ok, err := uploadImage(c, h.Storage.UploadGalleryImage)
	if !ok {
		return
	}
	if err == nil {
		deleteStoredImage(h.Storage, image.Image)
		image.Image = imageURL
	}

	if err := h.DB.Save(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update gallery image"})
		return
	}

	c.JSON(http.StatusOK, image)
}

func (h *GalleryHandler) DeleteGalleryImage(c *gin.Context) {
	var image models.GalleryImage
	if err := h.DB.Where("id = ?", c.Param("id")).First(&image).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gallery image not found"})
		return
	}

	deleteStoredImage(h.Storage, image.Image)

	if err := h.DB.Delete(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete gallery image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gallery image deleted successfully"})
}
