package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/transport/http/middleware"
	"github.com/linkedleaders/platform-api/internal/usecase"
)

// AuthHandler exposes authentication and registration endpoints.
type AuthHandler struct {
	auth         *usecase.AuthService
	registration *usecase.RegistrationService
	profiles     *usecase.ProfileService
	sessions     *usecase.SessionStore
	notifier     NotificationDispatcher
	isDev        bool
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, registration *usecase.RegistrationService, profiles *usecase.ProfileService, sessions *usecase.SessionStore, notifier NotificationDispatcher, isDev bool) *AuthHandler {
	if notifier == nil {
		notifier = noopDispatcher{}
	}
	return &AuthHandler{
		auth:         auth,
		registration: registration,
		profiles:     profiles,
		sessions:     sessions,
		notifier:     notifier,
		isDev:        isDev,
	}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the credential endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares, registerMiddlewares []gin.HandlerFunc) {
	registerChain := append([]gin.HandlerFunc{}, registerMiddlewares...)
	registerChain = append(registerChain, h.register)
	r.POST("/register", registerChain...)

	loginChain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	loginChain = append(loginChain, h.login)
	r.POST("/login", loginChain...)

	r.POST("/refresh", h.refresh)
	r.POST("/verify-email", h.verifyEmail)

	resendChain := append([]gin.HandlerFunc{}, registerMiddlewares...)
	resendChain = append(resendChain, h.resendVerification)
	r.POST("/resend-verification", resendChain...)
}

// RegisterProtectedRoutes binds routes that require an authenticated caller.
func (h *AuthHandler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/logout", h.logout)
	if h.sessions != nil {
		r.GET("/session", h.session)
	}
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		Email:                  req.Email,
		Password:               req.Password,
		FullName:               req.FullName,
		Role:                   domain.Role(req.Role),
		Bio:                    req.Bio,
		MentorExperience:       req.MentorExperience,
		ExpertiseAreas:         req.ExpertiseAreas,
		LanguagesSpoken:        req.LanguagesSpoken,
		YearsOfExperience:      req.YearsOfExperience,
		SessionRate:            req.SessionRate,
		ProfessionalBackground: req.ProfessionalBackground,
		OrganizationName:       req.OrganizationName,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password too weak"},
			{Err: usecase.ErrInvalidRegistration, Status: http.StatusBadRequest, Message: "invalid registration"},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	resp := RegistrationResponse{
		UserID:         result.UserID,
		Email:          result.Email,
		OrganizationID: result.OrganizationID,
	}
	// The verification token normally travels by email; development builds
	// return it inline so the flow can be exercised without a mail sink.
	if h.isDev {
		resp.VerificationToken = result.VerificationToken
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	reqCtx := middleware.GetRequestContext(c)
	var ip, userAgent *string
	if reqCtx.IP != "" {
		ip = &reqCtx.IP
	}
	if reqCtx.UserAgent != "" {
		userAgent = &reqCtx.UserAgent
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, ip, userAgent)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrAccountPending, Status: http.StatusForbidden, Message: "account pending verification"},
			{Err: usecase.ErrInactiveAccount, Status: http.StatusForbidden, Message: "account inactive"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	// The session token carries the role read at login time; authorization
	// decisions still re-read the profile row per request.
	profile, err := h.profiles.GetFresh(c.Request.Context(), result.User.ID)
	if err != nil {
		if errors.Is(err, usecase.ErrProfileNotFound) {
			c.JSON(http.StatusForbidden, NewErrorResponse(c, "account profile missing"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "login failed"))
		return
	}

	accessToken, err := h.auth.IssueAccessToken(result.User.ID, result.User.Email, profile.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "login failed"))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(result.ExpiresIn.Seconds()),
		SessionID:    result.SessionID,
		Profile:      newProfileSummary(*profile),
	})
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid refresh payload"))
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidRefreshToken, Status: http.StatusUnauthorized, Message: "invalid refresh token"},
			{Err: usecase.ErrExpiredRefreshToken, Status: http.StatusUnauthorized, Message: "refresh token expired"},
		}, http.StatusInternalServerError, "token refresh failed")
		return
	}

	profile, err := h.profiles.GetFresh(c.Request.Context(), result.User.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "token refresh failed"))
		return
	}

	accessToken, err := h.auth.IssueAccessToken(result.User.ID, result.User.Email, profile.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "token refresh failed"))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(result.ExpiresIn.Seconds()),
		SessionID:    result.SessionID,
		Profile:      newProfileSummary(*profile),
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.auth.SignOutUser(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "logout failed"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "signed out"})
}

// session resolves the caller's identity against the live profile row and
// reports the snapshot the client should act on.
func (h *AuthHandler) session(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	snap := h.sessions.Resolve(c.Request.Context(), userID)

	resp := SessionResponse{
		State:       snap.State.String(),
		Permissions: snap.Permissions,
		ResolvedAt:  snap.ResolvedAt,
	}
	if snap.Profile != nil {
		summary := newProfileSummary(*snap.Profile)
		resp.Profile = &summary
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) resendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resend payload"))
		return
	}

	result, err := h.registration.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		// Unknown or already-verified addresses get the same accepted answer
		// as real ones to avoid account enumeration.
		if errors.Is(err, usecase.ErrUnknownEmail) || errors.Is(err, usecase.ErrAlreadyVerified) {
			c.JSON(http.StatusAccepted, MessageResponse{Message: "verification email sent if the account exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "resend failed"))
		return
	}

	if err := h.notifier.SendVerificationEmail(c.Request.Context(), VerificationNotification{
		Email:     result.Email,
		DevToken:  result.VerificationToken,
		ExpiresAt: result.ExpiresAt,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "resend failed"))
		return
	}

	resp := MessageResponse{Message: "verification email sent if the account exists"}
	if h.isDev {
		c.JSON(http.StatusAccepted, gin.H{"message": resp.Message, "verification_token": result.VerificationToken})
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

func (h *AuthHandler) verifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	if err := h.auth.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidVerificationToken, Status: http.StatusBadRequest, Message: "invalid or expired verification token"},
		}, http.StatusInternalServerError, "verification failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "email verified"})
}
