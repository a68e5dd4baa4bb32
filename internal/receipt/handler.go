package receipt

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lromerof/comite-agua/internal/ledger"
	"github.com/lromerof/comite-agua/internal/middleware"
)

// Handler generates receipts for committed payments.
type Handler struct {
	ledger   ledger.Service
	renderer *Renderer
}

func NewHandler(ledgerSvc ledger.Service, renderer *Renderer) *Handler {
	return &Handler{ledger: ledgerSvc, renderer: renderer}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/payments/:id/receipt", h.generate)
}

func (h *Handler) generate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	detail, err := h.ledger.Detail(c.Request.Context(), id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	path, err := h.renderer.Render(c.Request.Context(), detail)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file": path})
}
