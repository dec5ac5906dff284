package listing

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookswap/internal/collection"
	"bookswap/internal/confirm"
	"bookswap/internal/logger"
	"bookswap/pkg/models"
)

type Handler struct {
	Store         *Store
	Confirmations *confirm.Registry
}

func NewHandler(store *Store, confirmations *confirm.Registry) *Handler {
	return &Handler{Store: store, Confirmations: confirmations}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/listings", h.list)
	rg.POST("/listings", h.create)
	rg.GET("/listings/:id", h.getOne)
	rg.POST("/listings/:id/toggle", h.toggle)
	rg.DELETE("/listings/:id", h.remove)
}

type createReq struct {
	ID          string  `json:"id"` // optional, generated when empty
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	Price       float64 `json:"price"`
	ListingType string  `json:"listing_type"`
	Status      string  `json:"status"` // defaults to Available
	Contact     string  `json:"contact"`
}

func (h *Handler) list(c *gin.Context) {
	items := h.Store.List()
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	b, ok := h.Store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	lt, err := models.ParseListingType(req.ListingType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.StatusAvailable
	if strings.TrimSpace(req.Status) != "" {
		if status, err = models.ParseStatus(req.Status); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	b := models.Book{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Category:    strings.TrimSpace(req.Category),
		Condition:   strings.TrimSpace(req.Condition),
		Price:       req.Price,
		ListingType: lt,
		Status:      status,
		Contact:     strings.TrimSpace(req.Contact),
	}

	if _, err := h.Store.Add(b); err != nil {
		switch {
		case errors.Is(err, collection.ErrDuplicateID):
			c.JSON(http.StatusConflict, gin.H{"error": "listing id already exists"})
		case errors.Is(err, models.ErrInvalidBook):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *Handler) toggle(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	items := h.Store.ToggleStatus(id)
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

// remove starts a two-step delete. The listing is only removed once the
// returned confirmation is confirmed through the confirmations routes.
func (h *Handler) remove(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	log := logger.Component("listing")

	var (
		opened  *confirm.Request
		settled []models.Book
	)
	gate := confirm.Func(func(p confirm.Prompt, onConfirm, onCancel func()) {
		req := h.Confirmations.Open(p,
			func() {
				log.Info().Str("listing_id", id).Msg("listing deleted")
				onConfirm()
			},
			func() {
				log.Info().Str("listing_id", id).Msg("listing delete cancelled")
				onCancel()
			},
		)
		opened = &req
	})

	h.Store.Delete(id, gate, func(books []models.Book) { settled = books })

	if opened == nil {
		// unknown id: nothing to confirm
		c.JSON(http.StatusOK, gin.H{
			"total": len(settled),
			"items": settled,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"confirmation": opened})
}
