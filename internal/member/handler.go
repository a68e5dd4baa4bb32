package member

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lromerof/comite-agua/internal/middleware"
)

// Handler exposes HTTP handlers for member resources.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/members")
	group.POST("", h.create)
	group.GET("", h.list)
	group.GET("/search", h.search)
	group.GET("/:number", h.getByNumber)
	group.PATCH("/:number", h.update)
}

type createMemberRequest struct {
	Number  *int   `json:"number"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

func (h *Handler) create(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.svc.Create(c.Request.Context(), CreateParams{
		Number:  req.Number,
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) list(c *gin.Context) {
	activeOnly := c.Query("all") == ""

	members, err := h.svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) search(c *gin.Context) {
	fragment := c.Query("q")
	if fragment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	members, err := h.svc.SearchByName(c.Request.Context(), fragment)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) getByNumber(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member number"})
		return
	}

	m, err := h.svc.GetByNumber(c.Request.Context(), number)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type updateMemberRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Status  *string `json:"status"`
}

// update resolves the member by account number, then applies the patch by id.
func (h *Handler) update(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member number"})
		return
	}

	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.svc.GetByNumber(c.Request.Context(), number)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	m, err := h.svc.Update(c.Request.Context(), UpdateParams{
		ID:      existing.ID,
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
		Status:  req.Status,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
