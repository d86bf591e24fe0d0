package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// ProfileHandler exposes the caller's own profile.
type ProfileHandler struct {
	profiles *usecase.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles *usecase.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterRoutes binds profile routes. All routes require authentication.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.me)
	r.PATCH("/me", h.update)
}

func (h *ProfileHandler) me(c *gin.Context) {
	profile, ok := middleware.GetAuthenticatedProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, newProfileSummary(*profile))
}

func (h *ProfileHandler) update(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	updated, err := h.profiles.Update(c.Request.Context(), userID, usecase.UpdateProfileInput{
		FullName:               req.FullName,
		AvatarURL:              req.AvatarURL,
		Bio:                    req.Bio,
		MentorExperience:       req.MentorExperience,
		ExpertiseAreas:         req.ExpertiseAreas,
		LanguagesSpoken:        req.LanguagesSpoken,
		YearsOfExperience:      req.YearsOfExperience,
		SessionRate:            req.SessionRate,
		ProfessionalBackground: req.ProfessionalBackground,
		CalUsername:            req.CalUsername,
	}, middleware.GetPermissions(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrProfileNotFound, Status: http.StatusNotFound, Message: "profile not found"},
		}, http.StatusInternalServerError, "profile update failed")
		return
	}

	c.JSON(http.StatusOK, newProfileSummary(*updated))
}

// paginationParams extracts limit/offset query parameters with defaults.
func paginationParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
