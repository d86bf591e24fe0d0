package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// DiscussionHandler exposes the Coffee Talk community board.
type DiscussionHandler struct {
	community *usecase.CommunityService
}

// NewDiscussionHandler constructs DiscussionHandler.
func NewDiscussionHandler(community *usecase.CommunityService) *DiscussionHandler {
	return &DiscussionHandler{community: community}
}

// RegisterRoutes binds discussion routes. All routes require authentication.
func (h *DiscussionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.delete)
	r.POST("/:id/replies", h.reply)
	r.DELETE("/:id/replies/:replyID", h.deleteReply)
}

// isModerator reports whether the caller may edit other members' posts.
func isModerator(c *gin.Context) bool {
	return middleware.GetPermissions(c).Has(domain.PermApproveUsers)
}

func (h *DiscussionHandler) list(c *gin.Context) {
	limit, offset := paginationParams(c)

	discussions, err := h.community.ListDiscussions(c.Request.Context(), c.Query("category"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "discussion list failed"))
		return
	}

	c.JSON(http.StatusOK, discussions)
}

func (h *DiscussionHandler) create(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req DiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid discussion payload"))
		return
	}

	discussion, err := h.community.StartDiscussion(c.Request.Context(), userID, req.Title, req.Body, req.Category)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmptyPost, Status: http.StatusBadRequest, Message: "title and body are required"},
		}, http.StatusInternalServerError, "discussion creation failed")
		return
	}

	c.JSON(http.StatusCreated, discussion)
}

func (h *DiscussionHandler) get(c *gin.Context) {
	discussion, replies, err := h.community.GetDiscussion(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrDiscussionNotFound, Status: http.StatusNotFound, Message: "discussion not found"},
		}, http.StatusInternalServerError, "discussion lookup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"discussion": discussion, "replies": replies})
}

func (h *DiscussionHandler) update(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req DiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid discussion payload"))
		return
	}

	discussion, err := h.community.UpdateDiscussion(c.Request.Context(), userID, isModerator(c), c.Param("id"), req.Title, req.Body)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrDiscussionNotFound, Status: http.StatusNotFound, Message: "discussion not found"},
			{Err: usecase.ErrEmptyPost, Status: http.StatusBadRequest, Message: "title and body are required"},
		}, http.StatusInternalServerError, "discussion update failed")
		return
	}

	c.JSON(http.StatusOK, discussion)
}

func (h *DiscussionHandler) delete(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.community.DeleteDiscussion(c.Request.Context(), userID, isModerator(c), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrDiscussionNotFound, Status: http.StatusNotFound, Message: "discussion not found"},
		}, http.StatusInternalServerError, "discussion delete failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "discussion deleted"})
}

func (h *DiscussionHandler) reply(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reply payload"))
		return
	}

	reply, err := h.community.Reply(c.Request.Context(), userID, c.Param("id"), req.Body)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrDiscussionNotFound, Status: http.StatusNotFound, Message: "discussion not found"},
			{Err: usecase.ErrEmptyPost, Status: http.StatusBadRequest, Message: "reply body is required"},
		}, http.StatusInternalServerError, "reply failed")
		return
	}

	c.JSON(http.StatusCreated, reply)
}

func (h *DiscussionHandler) deleteReply(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.community.DeleteReply(c.Request.Context(), userID, isModerator(c), c.Param("id"), c.Param("replyID")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrDiscussionNotFound, Status: http.StatusNotFound, Message: "reply not found"},
		}, http.StatusInternalServerError, "reply delete failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "reply deleted"})
}
