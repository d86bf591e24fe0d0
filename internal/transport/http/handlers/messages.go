package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// MessageHandler exposes direct messaging and platform announcements.
type MessageHandler struct {
	messaging *usecase.MessagingService
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(messaging *usecase.MessagingService) *MessageHandler {
	return &MessageHandler{messaging: messaging}
}

// RegisterRoutes binds messaging routes. All routes require authentication;
// announceMiddlewares runs ahead of the announcement publish endpoint.
func (h *MessageHandler) RegisterRoutes(r *gin.RouterGroup, announceMiddlewares ...gin.HandlerFunc) {
	r.GET("", h.inbox)
	r.POST("", h.send)
	r.GET("/announcements", h.announcements)

	announceChain := append([]gin.HandlerFunc{}, announceMiddlewares...)
	announceChain = append(announceChain, h.announce)
	r.POST("/announcements", announceChain...)

	r.GET("/thread/:profileID", h.thread)
}

func (h *MessageHandler) send(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid message payload"))
		return
	}

	msg, err := h.messaging.Send(c.Request.Context(), userID, middleware.GetPermissions(c), req.RecipientID, req.Subject, req.Body)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrRecipientNotFound, Status: http.StatusNotFound, Message: "recipient not found"},
			{Err: usecase.ErrEmptyMessage, Status: http.StatusBadRequest, Message: "message body is required"},
		}, http.StatusInternalServerError, "message send failed")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) announce(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req AnnounceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid announcement payload"))
		return
	}

	msg, err := h.messaging.Announce(c.Request.Context(), userID, middleware.GetPermissions(c), req.Subject, req.Body)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrEmptyMessage, Status: http.StatusBadRequest, Message: "announcement body is required"},
		}, http.StatusInternalServerError, "announcement failed")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) inbox(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	threads, err := h.messaging.Inbox(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "inbox load failed"))
		return
	}

	c.JSON(http.StatusOK, threads)
}

func (h *MessageHandler) thread(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	limit, offset := paginationParams(c)
	messages, err := h.messaging.Thread(c.Request.Context(), userID, c.Param("profileID"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "thread load failed"))
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) announcements(c *gin.Context) {
	messages, err := h.messaging.Announcements(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "announcement load failed"))
		return
	}

	c.JSON(http.StatusOK, messages)
}
