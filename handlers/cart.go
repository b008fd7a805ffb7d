package handlers

import (
	"errors"
	"net/http"

	"catering-backend/cart"
	"catering-backend/catalog"
	"catering-backend/middleware"
	"catering-backend/utils"

	"github.com/gin-gonic/gin"
)

var errCartSave = errors.New("failed to save cart")

type CartHandler struct {
	Registry       *cart.Registry
	Catalog        *catalog.Catalog
	Currency       string
	WhatsAppNumber string
	NotifyEmail    string
}

type addToCartRequest struct {
	ItemID         string `json:"item_id" binding:"required"`
	Quantity       int    `json:"quantity" binding:"gte=0"`
	SelectedOption string `json:"selected_option"`
}

type mixRequest struct {
	ItemID     string   `json:"item_id" binding:"required"`
	Quantity   int      `json:"quantity" binding:"gte=0"`
	Selections []string `json:"selections" binding:"required,min=1"`
}

type updateQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func cartBody(l *cart.Ledger, currency string) gin.H {
	items := l.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	total := l.Total()
	return gin.H{
		"items":           items,
		"cart_total":      total,
		"cart_count":      l.Count(),
		"formatted_total": cart.FormatCurrency(total, currency),
	}
}

// checkSaved turns a failed slot write into an error for the response path.
func checkSaved(l *cart.Ledger) error {
	if l.PersistErr() != nil {
		return errCartSave
	}
	return nil
}

func cartError(c *gin.Context, err error) {
	var minErr *cart.MinQuantityError
	switch {
	case errors.As(err, &minErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   minErr.Error(),
			"min_qty": minErr.MinQty,
			"unit":    minErr.Unit,
		})
	case errors.Is(err, errCartSave):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
	case errors.Is(err, cart.ErrCartUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart, please try again"})
	case errors.Is(err, cart.ErrClearNotConfirmed),
		errors.Is(err, cart.ErrMixIncomplete),
		errors.Is(err, cart.ErrMixFull),
		errors.Is(err, cart.ErrInvalidChoice),
		errors.Is(err, cart.ErrNegativePrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart update failed"})
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	var body gin.H
	err := h.Registry.With(middleware.CartSessionID(c), func(l *cart.Ledger) error {
		body = cartBody(l, h.Currency)
		return nil
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// orderable fetches a live item and rejects ones that cannot be sold now.
func (h *CartHandler) orderable(c *gin.Context, id string) (catalog.Item, bool) {
	item, ok := h.Catalog.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return catalog.Item{}, false
	}
	if !item.Orderable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": item.Name + " is not available right now"})
		return catalog.Item{}, false
	}
	return item, true
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	item, ok := h.orderable(c, req.ItemID)
	if !ok {
		return
	}

	if cart.NeedsMix(item, req.SelectedOption) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "This item is sold as a mix, use /api/cart/mix",
			"required": cart.RequiredCount(item),
			"choices":  cart.ComposableChoices(item),
		})
		return
	}
	if req.SelectedOption != "" && !item.HasChoice(req.SelectedOption) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Option is not offered for this item"})
		return
	}
	if item.HasOptions() && req.SelectedOption == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please choose an option"})
		return
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = item.EffectiveMinQty()
	}
	if quantity > item.Stock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock", "stock": item.Stock})
		return
	}

	var notice cart.Notice
	var body gin.H
	err := h.Registry.With(middleware.CartSessionID(c), func(l *cart.Ledger) error {
		var err error
		if notice, err = l.AddToCart(item, quantity, req.SelectedOption, nil); err != nil {
			return err
		}
		body = cartBody(l, h.Currency)
		return checkSaved(l)
	})
	if err != nil {
		cartError(c, err)
		return
	}

	body["message"] = notice.Message()
	body["notice"] = notice
	c.JSON(http.StatusOK, body)
}

// AddMix composes a bundle from selections and adds it as one line. Without
// duplicates allowed, a repeated selection is rejected.
func (h *CartHandler) AddMix(c *gin.Context) {
	var req mixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	item, ok := h.orderable(c, req.ItemID)
	if !ok {
		return
	}
	if len(cart.ComposableChoices(item)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This item has no choices to mix"})
		return
	}

	session := cart.NewMixSession(item)
	for _, choice := range req.Selections {
		if !item.AllowDuplicate && session.Count(choice) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Each choice can only be picked once"})
			return
		}
		if err := session.Add(choice); err != nil {
			cartError(c, err)
			return
		}
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = item.EffectiveMinQty()
	}
	if quantity > item.Stock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock", "stock": item.Stock})
		return
	}
	composition, err := session.Compose(quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "required": session.Required()})
		return
	}

	var notice cart.Notice
	var body gin.H
	err = h.Registry.With(middleware.CartSessionID(c), func(l *cart.Ledger) error {
		var err error
		if notice, err = composition.CommitTo(l); err != nil {
			return err
		}
		body = cartBody(l, h.Currency)
		return checkSaved(l)
	})
	if err != nil {
		cartError(c, err)
		return
	}

	body["message"] = notice.Message()
	body["notice"] = notice
	c.JSON(http.StatusOK, body)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var body gin.H
	err := h.Registry.With(middleware.CartSessionID(c), func(l *cart.Ledger) error {
		if err := l.UpdateQuantity(c.Param("cartId"), req.Delta); err != nil {
			return err
		}
		body = cartBody(l, h.Currency)
		return checkSaved(l)
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	var body gin.H
	err := h.Registry.With(middleware.CartSessionID(c), func(l *cart.Ledger) error {
		l.Remove(c.Param("cartId"))
		body = cartBody(l, h.Currency)
		return checkSaved(l)
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// ClearCart needs ?confirm=true.
func (h *CartHandler) ClearCart(c *gin.Context) {
	var body gin.H
	err := h.Registry.With(middleware.CartSessionID(c), func(l *cart.Ledger) error {
		if err := l.Clear(c.Query("confirm") == "true"); err != nil {
			return err
		}
		body = cartBody(l, h.Currency)
		return checkSaved(l)
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// Checkout formats the order for handoff. GET previews with no contact
// details; POST takes the customer block and notifies the kitchen by email.
func (h *CartHandler) Checkout(c *gin.Context) {
	var customer cart.Customer
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&customer); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
			return
		}
	}

	var lines []cart.LineItem
	var total float64
	err := h.Registry.With(middleware.CartSessionID(c), func(l *cart.Ledger) error {
		lines = l.Items()
		total = l.Total()
		return nil
	})
	if err != nil {
		cartError(c, err)
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	message := cart.FormatOrderMessage(lines, total, customer, h.Currency)
	if c.Request.Method == http.MethodPost && h.NotifyEmail != "" && utils.EmailConfigured() {
		utils.SendOrderNotification(h.NotifyEmail, customer.Name, message)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      message,
		"whatsapp_url": cart.WhatsAppURL(h.WhatsAppNumber, message),
	})
}
