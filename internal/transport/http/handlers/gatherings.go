package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// GatheringHandler exposes fireside chats and masterclasses.
type GatheringHandler struct {
	gatherings *usecase.GatheringService
}

// NewGatheringHandler constructs GatheringHandler.
func NewGatheringHandler(gatherings *usecase.GatheringService) *GatheringHandler {
	return &GatheringHandler{gatherings: gatherings}
}

// RegisterFiresideRoutes binds fireside chat routes. All routes require
// authentication.
func (h *GatheringHandler) RegisterFiresideRoutes(r *gin.RouterGroup) {
	r.GET("", h.listFiresides)
	r.POST("", h.createFireside)
	r.GET("/:id", h.getFireside)
	r.POST("/:id/register", h.registerFireside)
	r.DELETE("/:id/register", h.unregisterFireside)
}

// RegisterMasterclassRoutes binds masterclass routes. All routes require
// authentication.
func (h *GatheringHandler) RegisterMasterclassRoutes(r *gin.RouterGroup) {
	r.GET("", h.listMasterclasses)
	r.POST("", h.createMasterclass)
	r.POST("/:id/register", h.registerMasterclass)
	r.GET("/:id/recording", h.recording)
}

func (h *GatheringHandler) createFireside(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req FiresideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid fireside payload"))
		return
	}

	chat, err := h.gatherings.CreateFireside(c.Request.Context(), userID, middleware.GetPermissions(c), usecase.CreateFiresideInput{
		Title:           req.Title,
		Description:     req.Description,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
		MeetingURL:      req.MeetingURL,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrInvalidGathering, Status: http.StatusBadRequest, Message: "invalid fireside chat"},
		}, http.StatusInternalServerError, "fireside creation failed")
		return
	}

	c.JSON(http.StatusCreated, chat)
}

func (h *GatheringHandler) listFiresides(c *gin.Context) {
	limit, offset := paginationParams(c)

	chats, err := h.gatherings.ListUpcomingFiresides(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "fireside list failed"))
		return
	}

	c.JSON(http.StatusOK, chats)
}

func (h *GatheringHandler) getFireside(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	chat, registered, err := h.gatherings.GetFireside(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGatheringNotFound, Status: http.StatusNotFound, Message: "fireside chat not found"},
		}, http.StatusInternalServerError, "fireside lookup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat": chat, "registered": registered})
}

func (h *GatheringHandler) registerFireside(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.gatherings.RegisterFireside(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGatheringNotFound, Status: http.StatusNotFound, Message: "fireside chat not found"},
			{Err: usecase.ErrGatheringFull, Status: http.StatusConflict, Message: "fireside chat is full"},
		}, http.StatusInternalServerError, "fireside registration failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "registered"})
}

func (h *GatheringHandler) unregisterFireside(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.gatherings.UnregisterFireside(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "fireside unregistration failed"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "unregistered"})
}

func (h *GatheringHandler) createMasterclass(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req MasterclassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid masterclass payload"))
		return
	}

	class, err := h.gatherings.CreateMasterclass(c.Request.Context(), userID, middleware.GetPermissions(c), usecase.CreateMasterclassInput{
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrInvalidGathering, Status: http.StatusBadRequest, Message: "invalid masterclass"},
		}, http.StatusInternalServerError, "masterclass creation failed")
		return
	}

	c.JSON(http.StatusCreated, class)
}

func (h *GatheringHandler) listMasterclasses(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	limit, offset := paginationParams(c)
	classes, err := h.gatherings.ListMasterclasses(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "masterclass list failed"))
		return
	}

	c.JSON(http.StatusOK, classes)
}

func (h *GatheringHandler) registerMasterclass(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.gatherings.RegisterMasterclass(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGatheringNotFound, Status: http.StatusNotFound, Message: "masterclass not found"},
		}, http.StatusInternalServerError, "masterclass registration failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "registered"})
}

func (h *GatheringHandler) recording(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	url, err := h.gatherings.Recording(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGatheringNotFound, Status: http.StatusNotFound, Message: "masterclass not found"},
			{Err: usecase.ErrRecordingRestricted, Status: http.StatusForbidden, Message: "recording is restricted to registrants"},
		}, http.StatusInternalServerError, "recording lookup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"recording_url": url})
}
