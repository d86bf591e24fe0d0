package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// DirectoryHandler exposes the third-party product directory.
type DirectoryHandler struct {
	directory *usecase.DirectoryService
}

// NewDirectoryHandler constructs DirectoryHandler.
func NewDirectoryHandler(directory *usecase.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// RegisterRoutes binds directory routes. All routes require authentication.
func (h *DirectoryHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.submit)
	r.GET("/:id", h.get)
	r.POST("/:id/approval", h.approve)
	r.POST("/:id/ratings", h.rate)
}

func (h *DirectoryHandler) submit(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req SubmitProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	product, err := h.directory.Submit(c.Request.Context(), userID, usecase.SubmitProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		WebsiteURL:  req.WebsiteURL,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidProduct, Status: http.StatusBadRequest, Message: "invalid product"},
		}, http.StatusInternalServerError, "product submission failed")
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *DirectoryHandler) list(c *gin.Context) {
	limit, offset := paginationParams(c)
	includeUnapproved := c.Query("include_unapproved") == "true"

	products, err := h.directory.List(c.Request.Context(), c.Query("category"), includeUnapproved, middleware.GetPermissions(c), limit, offset)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
		}, http.StatusInternalServerError, "product list failed")
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *DirectoryHandler) get(c *gin.Context) {
	product, ratings, err := h.directory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
		}, http.StatusInternalServerError, "product lookup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product, "ratings": ratings})
}

func (h *DirectoryHandler) approve(c *gin.Context) {
	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid approval payload"))
		return
	}

	if err := h.directory.Approve(c.Request.Context(), middleware.GetPermissions(c), c.Param("id"), req.Approved); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
		}, http.StatusInternalServerError, "approval failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "approval updated"})
}

func (h *DirectoryHandler) rate(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid rating payload"))
		return
	}

	rating, err := h.directory.Rate(c.Request.Context(), userID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
			{Err: usecase.ErrInvalidRating, Status: http.StatusBadRequest, Message: "invalid rating"},
		}, http.StatusInternalServerError, "rating failed")
		return
	}

	c.JSON(http.StatusCreated, rating)
}
