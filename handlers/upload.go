package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"catering-backend/firebase"
	"catering-backend/utils"

	"github.com/gin-gonic/gin"
)

var errNoImage = errors.New("no image provided")

type uploadFunc func(file multipart.File, filename, contentType string) (string, error)

// uploadImage validates and uploads the "image" form file. It writes the
// error response itself and returns ok=false when the request should stop.
// A missing file yields errNoImage with ok=true so callers can decide.
func uploadImage(c *gin.Context, upload uploadFunc) (string, bool, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return "", true, errNoImage
	}

	if err := utils.ValidateFileUpload(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return "", false, err
	}
	defer file.Close()

	imageURL, err := upload(file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("Image upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
		return "", false, err
	}
	return imageURL, true, nil
}

// deleteStoredImage removes an image previously handed out by storage.
// Failures are logged only.
func deleteStoredImage(storage firebase.StorageClient, imageURL string) {
	if imageURL == "" {
		return
	}
	objectPath, err := utils.ExtractObjectPath(imageURL)
	if err != nil {
		return
	}
	if err := storage.DeleteFile(objectPath); err != nil {
		log.Printf("Warning: failed to delete image %s: %v", objectPath, err)
	}
}
