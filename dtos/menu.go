package dtos

// MenuItemRequest is the admin payload for creating or replacing a menu item.
// Multipart forms carry the same fields under the form tags.
type MenuItemRequest struct {
	Name           string   `json:"name" form:"name" binding:"required,max=120"`
	Description    string   `json:"description" form:"description"`
	Category       string   `json:"category" form:"category" binding:"required"`
	Price          float64  `json:"price" form:"price" binding:"gte=0"`
	OriginalPrice  *float64 `json:"original_price" form:"original_price" binding:"omitempty,gte=0"`
	Stock          int      `json:"stock" form:"stock" binding:"gte=0"`
	MinQty         int      `json:"min_qty" form:"min_qty" binding:"omitempty,gte=1"`
	Unit           string   `json:"unit" form:"unit"`
	MixLimit       int      `json:"mix_limit" form:"mix_limit" binding:"gte=0"`
	AllowDuplicate bool     `json:"allow_duplicate" form:"allow_duplicate"`
	IsAvailable    *bool    `json:"is_available" form:"is_available"`
	OptionsTitle   string   `json:"options_title" form:"options_title"`
	Choices        []string `json:"choices" form:"choices"`
	Image          string   `json:"image" form:"image"`
	ImageURL       string   `json:"image_url" form:"image_url"`
}

// MenuImportRequest replaces or extends the menu in one batch.
type MenuImportRequest struct {
	Items         []MenuImportItem `json:"items" binding:"required,min=1,max=2000"`
	DeleteMissing bool             `json:"delete_missing"`
}

// MenuImportItem is one import row. Rows with an ID update that item, rows
// without one create a new item.
type MenuImportItem struct {
	ID *string `json:"id"`
	MenuItemRequest
	Delete bool `json:"delete"`
}
