package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// TeamHandler exposes organization management and pooled credits.
type TeamHandler struct {
	teams *usecase.TeamService
}

// NewTeamHandler constructs TeamHandler.
func NewTeamHandler(teams *usecase.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// RegisterRoutes binds team routes. All routes require authentication.
func (h *TeamHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tiers", h.tiers)
	r.GET("/:id", h.get)
	r.GET("/:id/members", h.members)
	r.POST("/:id/members", h.addMember)
	r.DELETE("/:id/members/:profileID", h.removeMember)
	r.POST("/:id/credits", h.purchaseCredits)
	r.GET("/:id/usage", h.usage)
}

func (h *TeamHandler) get(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	org, err := h.teams.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOrganizationNotFound, Status: http.StatusNotFound, Message: "organization not found"},
			{Err: usecase.ErrNotTeamMember, Status: http.StatusForbidden, Message: "not a member of this organization"},
		}, http.StatusInternalServerError, "organization lookup failed")
		return
	}

	c.JSON(http.StatusOK, org)
}

func (h *TeamHandler) members(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	members, err := h.teams.Members(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotTeamMember, Status: http.StatusForbidden, Message: "not a member of this organization"},
		}, http.StatusInternalServerError, "member list failed")
		return
	}

	c.JSON(http.StatusOK, members)
}

func (h *TeamHandler) addMember(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req TeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid member payload"))
		return
	}

	err := h.teams.AddMember(c.Request.Context(), userID, middleware.GetPermissions(c), c.Param("id"), req.ProfileID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrOrganizationNotFound, Status: http.StatusNotFound, Message: "organization not found"},
			{Err: usecase.ErrProfileNotFound, Status: http.StatusNotFound, Message: "profile not found"},
			{Err: usecase.ErrAlreadyTeamMember, Status: http.StatusConflict, Message: "profile is already a member"},
		}, http.StatusInternalServerError, "member add failed")
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "member added"})
}

func (h *TeamHandler) removeMember(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	err := h.teams.RemoveMember(c.Request.Context(), userID, middleware.GetPermissions(c), c.Param("id"), c.Param("profileID"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrNotTeamMember, Status: http.StatusNotFound, Message: "profile is not a member"},
		}, http.StatusInternalServerError, "member removal failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "member removed"})
}

func (h *TeamHandler) purchaseCredits(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PurchaseCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid purchase payload"))
		return
	}

	err := h.teams.PurchaseCredits(c.Request.Context(), userID, middleware.GetPermissions(c), c.Param("id"), req.Credits)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrNotTeamMember, Status: http.StatusForbidden, Message: "not a member of this organization"},
			{Err: usecase.ErrInvalidPurchase, Status: http.StatusBadRequest, Message: "invalid credit amount"},
		}, http.StatusInternalServerError, "credit purchase failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "credits purchased"})
}

func (h *TeamHandler) usage(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	limit, offset := paginationParams(c)
	transactions, err := h.teams.Usage(c.Request.Context(), userID, middleware.GetPermissions(c), c.Param("id"), limit, offset)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrNotTeamMember, Status: http.StatusForbidden, Message: "not a member of this organization"},
		}, http.StatusInternalServerError, "usage lookup failed")
		return
	}

	c.JSON(http.StatusOK, transactions)
}

func (h *TeamHandler) tiers(c *gin.Context) {
	tiers, err := h.teams.Tiers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "tier list failed"))
		return
	}

	c.JSON(http.StatusOK, tiers)
}
