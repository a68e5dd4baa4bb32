package tariff

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/lromerof/comite-agua/internal/middleware"
)

// Handler exposes HTTP handlers for the tariff and concept registry.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/tariff", h.getFee)
	router.PUT("/tariff", h.setFee)

	concepts := router.Group("/concepts")
	concepts.GET("", h.listConcepts)
	concepts.POST("", h.createConcept)
	concepts.PATCH("/:id", h.updateConcept)
	concepts.DELETE("/:id", h.deactivateConcept)

	router.GET("/committee", h.getCommittee)
	router.PUT("/committee", h.updateCommittee)
	router.PUT("/pin", h.changePIN)
}

func (h *Handler) getFee(c *gin.Context) {
	fee, err := h.svc.MonthlyFee(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"monthly_fee": fee})
}

type setFeeRequest struct {
	MonthlyFee decimal.Decimal `json:"monthly_fee" binding:"required"`
}

func (h *Handler) setFee(c *gin.Context) {
	var req setFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.SetMonthlyFee(c.Request.Context(), req.MonthlyFee); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"monthly_fee": req.MonthlyFee})
}

func (h *Handler) listConcepts(c *gin.Context) {
	activeOnly := c.Query("all") == ""

	concepts, err := h.svc.ListConcepts(c.Request.Context(), activeOnly)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, concepts)
}

type createConceptRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price" binding:"required"`
}

func (h *Handler) createConcept(c *gin.Context) {
	var req createConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	concept, err := h.svc.CreateConcept(c.Request.Context(), CreateConceptParams{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, concept)
}

type updateConceptRequest struct {
	Name   *string          `json:"name"`
	Price  *decimal.Decimal `json:"price"`
	Active *bool            `json:"active"`
}

func (h *Handler) updateConcept(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	concept, err := h.svc.UpdateConcept(c.Request.Context(), UpdateConceptParams{
		ID:     id,
		Name:   req.Name,
		Price:  req.Price,
		Active: req.Active,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, concept)
}

func (h *Handler) deactivateConcept(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.svc.DeactivateConcept(c.Request.Context(), id); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getCommittee(c *gin.Context) {
	info, err := h.svc.CommitteeInfo(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) updateCommittee(c *gin.Context) {
	var info CommitteeInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.UpdateCommitteeInfo(c.Request.Context(), info); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type changePINRequest struct {
	CurrentPIN string `json:"current_pin" binding:"required"`
	NewPIN     string `json:"new_pin" binding:"required"`
}

func (h *Handler) changePIN(c *gin.Context) {
	var req changePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ChangePIN(c.Request.Context(), req.CurrentPIN, req.NewPIN); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
