package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProfileSummary is the member-facing view of a profile.
type ProfileSummary struct {
	ID                     string                `json:"id"`
	Email                  string                `json:"email"`
	FullName               *string               `json:"full_name,omitempty"`
	AvatarURL              *string               `json:"avatar_url,omitempty"`
	Bio                    *string               `json:"bio,omitempty"`
	Role                   domain.Role           `json:"role"`
	Credits                int                   `json:"credits"`
	MentorExperience       []string              `json:"mentor_experience,omitempty"`
	ExpertiseAreas         []string              `json:"expertise_areas,omitempty"`
	YearsOfExperience      *int                  `json:"years_of_experience,omitempty"`
	LanguagesSpoken        []string              `json:"languages_spoken,omitempty"`
	SessionRate            *int                  `json:"session_rate,omitempty"`
	ProfessionalBackground *string               `json:"professional_background,omitempty"`
	Approved               bool                  `json:"approved"`
	OrganizationID         *string               `json:"organization_id,omitempty"`
	Permissions            domain.PermissionSet  `json:"permissions"`
}

func newProfileSummary(profile domain.Profile) ProfileSummary {
	return ProfileSummary{
		ID:                     profile.ID,
		Email:                  profile.Email,
		FullName:               profile.FullName,
		AvatarURL:              profile.AvatarURL,
		Bio:                    profile.Bio,
		Role:                   profile.Role,
		Credits:                profile.Credits,
		MentorExperience:       profile.MentorExperience,
		ExpertiseAreas:         profile.ExpertiseAreas,
		YearsOfExperience:      profile.YearsOfExperience,
		LanguagesSpoken:        profile.LanguagesSpoken,
		SessionRate:            profile.SessionRate,
		ProfessionalBackground: profile.ProfessionalBackground,
		Approved:               profile.Approved,
		OrganizationID:         profile.OrganizationID,
		Permissions:            domain.PermissionsFor(profile.Role),
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"`
	SessionID    string         `json:"session_id"`
	Profile      ProfileSummary `json:"profile"`
}

// SessionResponse reports the caller's freshly resolved session snapshot.
type SessionResponse struct {
	State       string               `json:"state"`
	Profile     *ProfileSummary      `json:"profile,omitempty"`
	Permissions domain.PermissionSet `json:"permissions"`
	ResolvedAt  time.Time            `json:"resolved_at"`
}

// RefreshRequest represents the payload to refresh an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegistrationRequest defines the payload shared by the signup flows.
type RegistrationRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`

	Bio                    *string  `json:"bio,omitempty"`
	MentorExperience       []string `json:"mentor_experience,omitempty"`
	ExpertiseAreas         []string `json:"expertise_areas,omitempty"`
	LanguagesSpoken        []string `json:"languages_spoken,omitempty"`
	YearsOfExperience      *int     `json:"years_of_experience,omitempty"`
	SessionRate            *int     `json:"session_rate,omitempty"`
	ProfessionalBackground *string  `json:"professional_background,omitempty"`
	OrganizationName       string   `json:"organization_name,omitempty"`
}

// RegistrationResponse reports the created account.
type RegistrationResponse struct {
	UserID            string  `json:"user_id"`
	Email             string  `json:"email"`
	OrganizationID    *string `json:"organization_id,omitempty"`
	VerificationToken string  `json:"verification_token,omitempty"`
}

// ResendVerificationRequest asks for a fresh email-verification token.
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyEmailRequest carries the emailed verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// UpdateProfileRequest carries the member-editable profile fields.
type UpdateProfileRequest struct {
	FullName               *string  `json:"full_name,omitempty"`
	AvatarURL              *string  `json:"avatar_url,omitempty"`
	Bio                    *string  `json:"bio,omitempty"`
	MentorExperience       []string `json:"mentor_experience,omitempty"`
	ExpertiseAreas         []string `json:"expertise_areas,omitempty"`
	LanguagesSpoken        []string `json:"languages_spoken,omitempty"`
	YearsOfExperience      *int     `json:"years_of_experience,omitempty"`
	SessionRate            *int     `json:"session_rate,omitempty"`
	ProfessionalBackground *string  `json:"professional_background,omitempty"`
	CalUsername            *string  `json:"cal_username,omitempty"`
}

// MentorPageResponse is one page of mentor search results.
type MentorPageResponse struct {
	Mentors []ProfileSummary `json:"mentors"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// MentorRatingResponse is a mentor's aggregated review score.
type MentorRatingResponse struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// BookSessionRequest defines the payload for booking a mentoring session.
type BookSessionRequest struct {
	MentorID        string    `json:"mentor_id" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
}

// CancelBookingRequest carries the cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// ReviewRequest defines the payload for a post-session review.
type ReviewRequest struct {
	BookingID string  `json:"booking_id" binding:"required"`
	Rating    int     `json:"rating" binding:"required"`
	Comment   *string `json:"comment,omitempty"`
}

// DiscussionRequest defines the payload for creating or editing a thread.
type DiscussionRequest struct {
	Title    string  `json:"title" binding:"required"`
	Body     string  `json:"body" binding:"required"`
	Category *string `json:"category,omitempty"`
}

// ReplyRequest defines the payload for a thread reply.
type ReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

// FiresideRequest defines the payload for scheduling a fireside chat.
type FiresideRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     *string   `json:"description,omitempty"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Capacity        int       `json:"capacity"`
	MeetingURL      *string   `json:"meeting_url,omitempty"`
}

// MasterclassRequest defines the payload for scheduling a masterclass.
type MasterclassRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description *string   `json:"description,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// SendMessageRequest defines the payload for a direct message.
type SendMessageRequest struct {
	RecipientID string  `json:"recipient_id" binding:"required"`
	Subject     *string `json:"subject,omitempty"`
	Body        string  `json:"body" binding:"required"`
}

// AnnounceRequest defines the payload for a platform-wide announcement.
type AnnounceRequest struct {
	Subject *string `json:"subject,omitempty"`
	Body    string  `json:"body" binding:"required"`
}

// UploadResourceRequest defines the payload for a vault upload.
type UploadResourceRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	FileURL     string  `json:"file_url" binding:"required"`
}

// ResourceRequestRequest defines the payload for a vault resource request.
type ResourceRequestRequest struct {
	Title   string  `json:"title" binding:"required"`
	Details *string `json:"details,omitempty"`
}

// ResourceResponseRequest defines the payload answering a resource request.
type ResourceResponseRequest struct {
	ResourceID *string `json:"resource_id,omitempty"`
	Note       *string `json:"note,omitempty"`
}

// SubmitProductRequest defines the payload for a directory submission.
type SubmitProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	WebsiteURL  *string `json:"website_url,omitempty"`
}

// RateProductRequest defines the payload for rating a directory product.
type RateProductRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment,omitempty"`
}

// ApprovalRequest toggles an approval flag on a moderated record.
type ApprovalRequest struct {
	Approved bool `json:"approved"`
}

// TeamMemberRequest identifies a profile to add to an organization.
type TeamMemberRequest struct {
	ProfileID string `json:"profile_id" binding:"required"`
}

// PurchaseCreditsRequest defines the payload for a pooled credit purchase.
type PurchaseCreditsRequest struct {
	Credits int `json:"credits" binding:"required"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
