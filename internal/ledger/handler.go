package ledger

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lromerof/comite-agua/internal/middleware"
)

// Handler exposes HTTP handlers for the payment ledger. Members are addressed
// by their account number on the wire, as on the payment screen.
type Handler struct {
	svc     Service
	members MemberDirectory
}

func NewHandler(svc Service, members MemberDirectory) *Handler {
	return &Handler{svc: svc, members: members}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/payments", h.register)
	router.GET("/payments/:id", h.detail)
	router.GET("/members/:number/paid-months", h.paidMonths)
	router.GET("/members/:number/payments", h.history)
}

type registerPaymentRequest struct {
	MemberNumber int           `json:"member_number" binding:"required"`
	Year         int           `json:"year" binding:"required"`
	Months       []int         `json:"months"`
	Extras       []ExtraCharge `json:"extras"`
	Notes        string        `json:"notes"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.members.GetByNumber(c.Request.Context(), req.MemberNumber)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	id, err := h.svc.Register(c.Request.Context(), RegisterParams{
		MemberID: m.ID,
		Months:   req.Months,
		Year:     req.Year,
		Extras:   req.Extras,
		Notes:    req.Notes,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) detail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	detail, err := h.svc.Detail(c.Request.Context(), id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) paidMonths(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member number"})
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter year is required"})
		return
	}

	m, err := h.members.GetByNumber(c.Request.Context(), number)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	months, err := h.svc.PaidMonths(c.Request.Context(), m.ID, year)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	if months == nil {
		months = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "paid_months": months})
}

func (h *Handler) history(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member number"})
		return
	}

	m, err := h.members.GetByNumber(c.Request.Context(), number)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	payments, err := h.svc.History(c.Request.Context(), m.ID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	if payments == nil {
		payments = []Payment{}
	}
	c.JSON(http.StatusOK, payments)
}
