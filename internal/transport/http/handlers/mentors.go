package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// MentorHandler exposes the mentor directory.
type MentorHandler struct {
	mentors *usecase.MentorService
}

// NewMentorHandler constructs MentorHandler.
func NewMentorHandler(mentors *usecase.MentorService) *MentorHandler {
	return &MentorHandler{mentors: mentors}
}

// RegisterRoutes binds mentor directory routes.
func (h *MentorHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.search)
	r.GET("/:id", h.get)
	r.GET("/:id/rating", h.rating)
	r.GET("/:id/calendar", h.calendar)
	r.GET("/:id/reviews", h.reviews)
	r.POST("/reviews", h.leaveReview)
}

func (h *MentorHandler) search(c *gin.Context) {
	limit, offset := paginationParams(c)

	filter := domain.MentorSearchFilter{
		ExpertiseArea:    c.Query("expertise"),
		MentorExperience: c.Query("experience"),
		Language:         c.Query("language"),
		Query:            c.Query("q"),
		Limit:            limit,
		Offset:           offset,
	}
	if raw := c.Query("min_rate"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MinRate = &v
		}
	}
	if raw := c.Query("max_rate"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MaxRate = &v
		}
	}

	page, err := h.mentors.Search(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "mentor search failed"))
		return
	}

	mentors := make([]ProfileSummary, 0, len(page.Mentors))
	for _, mentor := range page.Mentors {
		mentors = append(mentors, newProfileSummary(mentor))
	}

	c.JSON(http.StatusOK, MentorPageResponse{
		Mentors: mentors,
		Total:   page.Total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

func (h *MentorHandler) get(c *gin.Context) {
	mentor, err := h.mentors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMentorNotFound, Status: http.StatusNotFound, Message: "mentor not found"},
		}, http.StatusInternalServerError, "mentor lookup failed")
		return
	}

	c.JSON(http.StatusOK, newProfileSummary(*mentor))
}

func (h *MentorHandler) rating(c *gin.Context) {
	rating, err := h.mentors.Rating(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "rating lookup failed"))
		return
	}

	c.JSON(http.StatusOK, MentorRatingResponse{Average: rating.Average, Count: rating.Count})
}

func (h *MentorHandler) calendar(c *gin.Context) {
	calendar, err := h.mentors.Calendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "calendar lookup failed"))
		return
	}
	if calendar == nil {
		c.JSON(http.StatusOK, gin.H{"configured": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configured":   true,
		"cal_username": calendar.CalUsername,
		"platform":     calendar.Platform,
	})
}

func (h *MentorHandler) reviews(c *gin.Context) {
	reviews, err := h.mentors.Reviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "reviews lookup failed"))
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *MentorHandler) leaveReview(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid review payload"))
		return
	}

	review, err := h.mentors.LeaveReview(c.Request.Context(), userID, req.BookingID, req.Rating, req.Comment)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			permissionDeniedCase,
			{Err: usecase.ErrBookingNotFound, Status: http.StatusNotFound, Message: "booking not found"},
			{Err: usecase.ErrInvalidRating, Status: http.StatusBadRequest, Message: "invalid rating"},
		}, http.StatusInternalServerError, "review failed")
		return
	}

	c.JSON(http.StatusCreated, review)
}
