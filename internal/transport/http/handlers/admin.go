package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// AdminHandler exposes moderation and analytics endpoints.
type AdminHandler struct {
	admin *usecase.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *usecase.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// RegisterRoutes binds admin routes. Route-level role checks are applied by
// the caller; the service re-checks permission flags on every call.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/mentors/pending", h.pendingMentors)
	r.POST("/mentors/:id/approval", h.setMentorApproval)
	r.POST("/invoices/:id/process", h.processInvoice)
	r.GET("/stats", h.stats)
}

func (h *AdminHandler) pendingMentors(c *gin.Context) {
	limit, offset := paginationParams(c)

	mentors, err := h.admin.PendingMentors(c.Request.Context(), middleware.GetPermissions(c), limit, offset)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
		}, http.StatusInternalServerError, "pending mentor list failed")
		return
	}

	summaries := make([]ProfileSummary, 0, len(mentors))
	for _, mentor := range mentors {
		summaries = append(summaries, newProfileSummary(mentor))
	}

	c.JSON(http.StatusOK, summaries)
}

func (h *AdminHandler) setMentorApproval(c *gin.Context) {
	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid approval payload"))
		return
	}

	err := h.admin.SetMentorApproval(c.Request.Context(), middleware.GetPermissions(c), c.Param("id"), req.Approved)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrMentorNotFound, Status: http.StatusNotFound, Message: "mentor not found"},
		}, http.StatusInternalServerError, "mentor approval failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "mentor approval updated"})
}

func (h *AdminHandler) processInvoice(c *gin.Context) {
	err := h.admin.ProcessInvoice(c.Request.Context(), middleware.GetPermissions(c), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
		}, http.StatusInternalServerError, "invoice processing failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "invoice processed"})
}

func (h *AdminHandler) stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context(), middleware.GetPermissions(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
		}, http.StatusInternalServerError, "stats lookup failed")
		return
	}

	c.JSON(http.StatusOK, stats)
}
