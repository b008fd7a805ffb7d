package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"catering-backend/catalog"
	"catering-backend/dtos"
	"catering-backend/firebase"
	"catering-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const repoTimeout = 15 * time.Second

type MenuHandler struct {
	Repo    catalog.Repository
	Catalog *catalog.Catalog
	Storage firebase.StorageClient
	Jobs    *utils.JobStore
}

// GetMenu serves the cached live view. ?category= narrows to one category,
// ?available=true drops items that cannot be ordered right now.
func (h *MenuHandler) GetMenu(c *gin.Context) {
	items := h.Catalog.All()
	if c.Query("available") == "true" {
		items = h.Catalog.Available()
	}

	if category := c.Query("category"); category != "" {
		filtered := make([]catalog.Item, 0, len(items))
		for _, item := range items {
			if strings.EqualFold(item.Category, category) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	if items == nil {
		items = []catalog.Item{}
	}

	c.JSON(http.StatusOK, items)
}

func (h *MenuHandler) GetMenuItem(c *gin.Context) {
	item, ok := h.Catalog.Lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetAdminMenu reads straight from the document store, so the dashboard sees
// its own writes before the subscription catches up.
func (h *MenuHandler) GetAdminMenu(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), repoTimeout)
	defer cancel()

	items, err := h.Repo.List(ctx)
	if err != nil {
		log.Printf("Error listing menu: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu"})
		return
	}
	if items == nil {
		items = []catalog.Item{}
	}
	c.JSON(http.StatusOK, items)
}

// itemFromRequest maps the admin payload onto a catalog item. Zero minimums
// become 1 and availability defaults to true.
func itemFromRequest(req dtos.MenuItemRequest) catalog.Item {
	item := catalog.Item{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Image:          req.Image,
		Category:       strings.TrimSpace(req.Category),
		Price:          req.Price,
		OriginalPrice:  req.OriginalPrice,
		Stock:          req.Stock,
		MinQty:         req.MinQty,
		Unit:           req.Unit,
		MixLimit:       req.MixLimit,
		AllowDuplicate: req.AllowDuplicate,
		IsAvailable:    true,
	}
	if item.MinQty == 0 {
		item.MinQty = 1
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	var choices []string
	for _, choice := range req.Choices {
		if choice = strings.TrimSpace(choice); choice != "" {
			choices = append(choices, choice)
		}
	}
	if len(choices) > 0 {
		item.Options = &catalog.Options{Title: req.OptionsTitle, Choices: choices}
	}
	return item
}

// validationResponse writes 400 for item rule violations.
func validationResponse(c *gin.Context, err error) {
	var fields catalog.FieldErrors
	if errors.As(err, &fields) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// resolveImage sets item.Image from an uploaded file or, failing that, from
// image_url. It returns false once it has written an error response.
func (h *MenuHandler) resolveImage(c *gin.Context, item *catalog.Item, imageURL string) bool {
	uploaded, ok, err := uploadImage(c, h.Storage.UploadMenuImage)
	if !ok {
		return false
	}
	if err == nil {
		item.Image = uploaded
		return true
	}

	if imageURL != "" {
		imported, err := h.Storage.ImportMenuImage(imageURL, uuid.New().String())
		if err != nil {
			log.Printf("Image import failed for %s: %v", imageURL, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to import image from URL"})
			return false
		}
		item.Image = imported
	}
	return true
}

func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	var req dtos.MenuItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	item := itemFromRequest(req)
	if err := item.Validate(); err != nil {
		validationResponse(c, err)
		return
	}
	if !h.resolveImage(c, &item, req.ImageURL) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), repoTimeout)
	defer cancel()

	created, err := h.Repo.Create(ctx, item)
	if err != nil {
		log.Printf("Error creating menu item: %v", err)
		deleteStoredImage(h.Storage, item.Image)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), repoTimeout)
	defer cancel()

	existing, err := h.Repo.Get(ctx, c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err != nil {
		log.Printf("Error loading menu item: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu item"})
		return
	}

	var req dtos.MenuItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	item := itemFromRequest(req)
	item.ID = existing.ID
	if item.Image == "" {
		item.Image = existing.Image
	}
	if err := item.Validate(); err != nil {
		validationResponse(c, err)
		return
	}
	if !h.resolveImage(c, &item, req.ImageURL) {
		return
	}

	if err := h.Repo.Update(ctx, item); err != nil {
		log.Printf("Error updating menu item %s: %v", item.ID, err)
		if item.Image != existing.Image {
			deleteStoredImage(h.Storage, item.Image)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
		return
	}
	if item.Image != existing.Image {
		deleteStoredImage(h.Storage, existing.Image)
	}

	c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) DeleteMenuItem(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), repoTimeout)
	defer cancel()

	existing, err := h.Repo.Get(ctx, c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu item"})
		return
	}

	if err := h.Repo.Delete(ctx, existing.ID); err != nil {
		log.Printf("Error deleting menu item %s: %v", existing.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
		return
	}
	deleteStoredImage(h.Storage, existing.Image)

	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}

// ImportMenu starts a background import and returns the job id at once.
func (h *MenuHandler) ImportMenu(c *gin.Context) {
	var req dtos.MenuImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	job := h.Jobs.CreateJob(len(req.Items))
	go h.processImport(job.ID, req)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID.String(),
		"status": dtos.JobStatusProcessing,
		"total":  job.Total,
	})
}

func (h *MenuHandler) GetImportJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	job, ok := h.Jobs.GetJob(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// processImport applies rows in order. Rows are numbered from 2 to line up
// with a spreadsheet that has a header row.
func (h *MenuHandler) processImport(jobID uuid.UUID, req dtos.MenuImportRequest) {
	h.Jobs.SetProcessing(jobID)
	ctx := context.Background()

	kept := make(map[string]bool)
	for i, row := range req.Items {
		rowNum := i + 2
		outcome, id, err := h.importRow(ctx, row)
		if err != nil {
			var fields catalog.FieldErrors
			if !errors.As(err, &fields) {
				fields = catalog.FieldErrors{"error": err.Error()}
			}
			h.Jobs.Fail(jobID, rowNum, row.Name, fields)
			continue
		}
		if outcome != utils.RowDeleted {
			kept[id] = true
		}
		h.Jobs.Record(jobID, outcome)
	}

	if req.DeleteMissing {
		existing, err := h.Repo.List(ctx)
		if err != nil {
			log.Printf("Error listing menu for import cleanup: %v", err)
			h.Jobs.CompleteJob(jobID, dtos.JobStatusFailed)
			return
		}
		removed := 0
		for _, item := range existing {
			if kept[item.ID] {
				continue
			}
			if err := h.Repo.Delete(ctx, item.ID); err != nil {
				log.Printf("Warning: failed to delete %s during import: %v", item.ID, err)
				continue
			}
			deleteStoredImage(h.Storage, item.Image)
			removed++
		}
		h.Jobs.CountDeleted(jobID, removed)
	}

	h.Jobs.CompleteJob(jobID, dtos.JobStatusCompleted)
	log.Printf("Menu import %s finished", jobID)
}

func (h *MenuHandler) importRow(ctx context.Context, row dtos.MenuImportItem) (utils.RowOutcome, string, error) {
	if row.Delete {
		if row.ID == nil || *row.ID == "" {
			return 0, "", errors.New("delete requires an id")
		}
		if err := h.Repo.Delete(ctx, *row.ID); err != nil {
			return 0, "", err
		}
		return utils.RowDeleted, *row.ID, nil
	}

	item := itemFromRequest(row.MenuItemRequest)
	if err := item.Validate(); err != nil {
		return 0, "", err
	}
	if item.Image == "" && row.ImageURL != "" {
		imported, err := h.Storage.ImportMenuImage(row.ImageURL, uuid.New().String())
		if err != nil {
			log.Printf("Warning: image import failed for %q: %v", row.Name, err)
		} else {
			item.Image = imported
		}
	}

	if row.ID != nil && *row.ID != "" {
		existing, err := h.Repo.Get(ctx, *row.ID)
		if err != nil {
			return 0, "", err
		}
		item.ID = existing.ID
		if item.Image == "" {
			item.Image = existing.Image
		}
		if err := h.Repo.Update(ctx, item); err != nil {
			return 0, "", err
		}
		return utils.RowUpdated, item.ID, nil
	}

	created, err := h.Repo.Create(ctx, item)
	if err != nil {
		return 0, "", err
	}
	return utils.RowCreated, created.ID, nil
}
