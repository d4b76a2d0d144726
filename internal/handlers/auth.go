package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/dto"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/logger"
	"github.com/yukikurage/ndt-worklog/internal/metrics"
	"github.com/yukikurage/ndt-worklog/internal/middleware"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	metrics     *metrics.Metrics

	// completeExternal is gothic.CompleteUserAuth outside tests.
	completeExternal func(http.ResponseWriter, *http.Request) (goth.User, error)
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		metrics:          m,
		completeExternal: gothic.CompleteUserAuth,
	}
}

// Register creates a local operator account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	h.metrics.Login("local", err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := startSession(c, user); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ExternalLogin redirects to the identity provider named by :provider.
func (h *AuthHandler) ExternalLogin(c *gin.Context) {
	if _, err := goth.GetProvider(c.Param("provider")); err != nil {
		apierrors.NotFound(c, "Unknown identity provider")
		return
	}
	withProvider(c)
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// ExternalCallback completes the provider login, links or creates the
// account and starts a session.
func (h *AuthHandler) ExternalCallback(c *gin.Context) {
	withProvider(c)
	profile, err := h.completeExternal(c.Writer, c.Request)
	if err != nil {
		h.metrics.Login("external", err)
		logger.FromContext(c).Warn().Err(err).Str("provider", c.Param("provider")).Msg("External login failed")
		apierrors.Unauthorized(c, "External authentication failed")
		return
	}

	user, err := h.authService.UpsertExternalUser(services.ExternalIdentity{
		Provider:   profile.Provider,
		ExternalID: profile.UserID,
		Email:      profile.Email,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
	})
	h.metrics.Login("external", err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := startSession(c, user); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func startSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	return session.Save()
}

// withProvider exposes the :provider path parameter where gothic looks for it.
func withProvider(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()
}
