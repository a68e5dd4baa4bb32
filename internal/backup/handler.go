package backup

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lromerof/comite-agua/internal/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/backup", h.backup)
	router.GET("/backups", h.list)
	router.POST("/restore", h.restore)
}

func (h *Handler) backup(c *gin.Context) {
	path, err := h.svc.Backup(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file": path})
}

func (h *Handler) list(c *gin.Context) {
	names, err := h.svc.List(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": names})
}

type restoreRequest struct {
	File string `json:"file" binding:"required"`
}

func (h *Handler) restore(c *gin.Context) {
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Restore(c.Request.Context(), req.File); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": req.File, "note": "restart the service to use the restored database"})
}
