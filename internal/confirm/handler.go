package confirm

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookswap/internal/logger"
)

type Handler struct {
	Registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{Registry: registry}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/confirmations", h.list)
	rg.POST("/confirmations/:id/confirm", h.resolve(true))
	rg.POST("/confirmations/:id/cancel", h.resolve(false))
}

func (h *Handler) list(c *gin.Context) {
	items := h.Registry.Pending()
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) resolve(accept bool) gin.HandlerFunc {
	decision := "cancelled"
	if accept {
		decision = "confirmed"
	}

	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation id required"})
			return
		}

		if err := h.Registry.Resolve(id, accept); err != nil {
			if errors.Is(err, ErrUnknownRequest) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
			return
		}

		logger.Get().Info().Str("confirmation_id", id).Str("decision", decision).Msg("confirmation resolved")
		c.JSON(http.StatusOK, gin.H{"id": id, "status": decision})
	}
}
