package wishlist

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookswap/internal/collection"
	"bookswap/internal/logger"
	"bookswap/pkg/models"
)

type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/wishlist", h.list)
	rg.POST("/wishlist", h.add)
	rg.GET("/wishlist/:id", h.getOne)
	rg.DELETE("/wishlist/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	items := h.Store.List()
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	b, ok := h.Store.Get(strings.TrimSpace(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

type addReq struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	Price       float64 `json:"price"`
	ListingType string  `json:"listing_type"`
	Status      string  `json:"status"`
	Contact     string  `json:"contact"`
}

// add bookmarks a listing. The body is the listing as published by its owner,
// so the id is required. Enum fields are matched case-insensitively.
func (h *Handler) add(c *gin.Context) {
	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	lt, err := models.ParseListingType(req.ListingType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b := models.Book{
		ID:          strings.TrimSpace(req.ID),
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
			c.JSON(http.StatusConflict, gin.H{"error": "already in wishlist"})
		case errors.Is(err, models.ErrInvalidBook):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "add failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *Handler) remove(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	_, existed := h.Store.Get(id)
	items := h.Store.Remove(id)
	if existed {
		logger.Component("wishlist").Info().Str("book_id", id).Msg("wishlist entry removed")
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}
