package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// VaultHandler exposes the shared document vault and the request board.
type VaultHandler struct {
	vault *usecase.VaultService
}

// NewVaultHandler constructs VaultHandler.
func NewVaultHandler(vault *usecase.VaultService) *VaultHandler {
	return &VaultHandler{vault: vault}
}

// RegisterRoutes binds vault routes. All routes require authentication.
func (h *VaultHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.upload)
	r.GET("/requests", h.listRequests)
	r.POST("/requests", h.request)
	r.GET("/requests/:id/responses", h.responses)
	r.POST("/requests/:id/responses", h.respond)
	r.GET("/:id", h.get)
	r.POST("/:id/approval", h.approve)
}

func (h *VaultHandler) upload(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UploadResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resource payload"))
		return
	}

	resource, err := h.vault.Upload(c.Request.Context(), userID, usecase.UploadResourceInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		FileURL:     req.FileURL,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidResource, Status: http.StatusBadRequest, Message: "invalid resource"},
		}, http.StatusInternalServerError, "upload failed")
		return
	}

	c.JSON(http.StatusCreated, resource)
}

func (h *VaultHandler) list(c *gin.Context) {
	limit, offset := paginationParams(c)
	includeUnapproved := c.Query("include_unapproved") == "true"

	resources, err := h.vault.List(c.Request.Context(), c.Query("category"), includeUnapproved, middleware.GetPermissions(c), limit, offset)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
		}, http.StatusInternalServerError, "vault list failed")
		return
	}

	c.JSON(http.StatusOK, resources)
}

func (h *VaultHandler) get(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	resource, err := h.vault.Get(c.Request.Context(), userID, middleware.GetPermissions(c), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResourceNotFound, Status: http.StatusNotFound, Message: "resource not found"},
		}, http.StatusInternalServerError, "resource lookup failed")
		return
	}

	c.JSON(http.StatusOK, resource)
}

func (h *VaultHandler) approve(c *gin.Context) {
	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid approval payload"))
		return
	}

	if err := h.vault.Approve(c.Request.Context(), middleware.GetPermissions(c), c.Param("id"), req.Approved); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrResourceNotFound, Status: http.StatusNotFound, Message: "resource not found"},
		}, http.StatusInternalServerError, "approval failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "approval updated"})
}

func (h *VaultHandler) request(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ResourceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	request, err := h.vault.Request(c.Request.Context(), userID, req.Title, req.Details)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidResource, Status: http.StatusBadRequest, Message: "request title is required"},
		}, http.StatusInternalServerError, "resource request failed")
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *VaultHandler) listRequests(c *gin.Context) {
	limit, offset := paginationParams(c)
	openOnly := c.DefaultQuery("open", "true") == "true"

	requests, err := h.vault.ListRequests(c.Request.Context(), openOnly, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "request list failed"))
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *VaultHandler) respond(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ResourceResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid response payload"))
		return
	}

	response, err := h.vault.Respond(c.Request.Context(), userID, c.Param("id"), req.ResourceID, req.Note)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResourceNotFound, Status: http.StatusNotFound, Message: "request not found"},
			{Err: usecase.ErrInvalidResource, Status: http.StatusBadRequest, Message: "a resource or a note is required"},
		}, http.StatusInternalServerError, "response failed")
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *VaultHandler) responses(c *gin.Context) {
	responses, err := h.vault.Responses(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "response list failed"))
		return
	}

	c.JSON(http.StatusOK, responses)
}
