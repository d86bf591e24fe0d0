package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// BookingHandler exposes the booking lifecycle and the credits ledger.
type BookingHandler struct {
	bookings *usecase.BookingService
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(bookings *usecase.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// RegisterRoutes binds booking routes. All routes require authentication.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.book)
	r.GET("/:id", h.get)
	r.POST("/:id/cancel", h.cancel)
	r.POST("/:id/complete", h.complete)
	r.GET("", h.list)
	r.GET("/transactions", h.transactions)
	r.GET("/earnings", h.earnings)
}

func (h *BookingHandler) book(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid booking payload"))
		return
	}

	booking, err := h.bookings.Book(c.Request.Context(), userID, middleware.GetPermissions(c), usecase.BookSessionInput{
		MentorID:        req.MentorID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrMentorNotFound, Status: http.StatusNotFound, Message: "mentor not found"},
			{Err: usecase.ErrInsufficientCredits, Status: http.StatusPaymentRequired, Message: "insufficient credits"},
			{Err: usecase.ErrInvalidBooking, Status: http.StatusBadRequest, Message: "invalid booking"},
		}, http.StatusInternalServerError, "booking failed")
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) get(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	booking, err := h.bookings.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrBookingNotFound, Status: http.StatusNotFound, Message: "booking not found"},
		}, http.StatusInternalServerError, "booking lookup failed")
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}
	if req.Reason == "" {
		req.Reason = "canceled by user"
	}

	if err := h.bookings.Cancel(c.Request.Context(), userID, c.Param("id"), req.Reason); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrBookingNotFound, Status: http.StatusNotFound, Message: "booking not found"},
			{Err: usecase.ErrBookingNotCancelable, Status: http.StatusConflict, Message: "booking cannot be canceled"},
		}, http.StatusInternalServerError, "cancellation failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "booking canceled, escrow refunded"})
}

func (h *BookingHandler) complete(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.bookings.Complete(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrBookingNotFound, Status: http.StatusNotFound, Message: "booking not found"},
			{Err: usecase.ErrInvalidBooking, Status: http.StatusConflict, Message: "booking is not scheduled"},
		}, http.StatusInternalServerError, "completion failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "session completed, escrow released"})
}

func (h *BookingHandler) list(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	limit, offset := paginationParams(c)

	if c.Query("as") == "mentor" {
		bookings, err := h.bookings.ListForMentor(c.Request.Context(), userID, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "booking list failed"))
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	bookings, err := h.bookings.ListForMentee(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "booking list failed"))
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) transactions(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	limit, offset := paginationParams(c)
	txs, err := h.bookings.Transactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "transaction list failed"))
		return
	}

	c.JSON(http.StatusOK, txs)
}

func (h *BookingHandler) earnings(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	escrow, invoices, err := h.bookings.MentorEarnings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "earnings lookup failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"escrow": escrow, "invoices": invoices})
}
