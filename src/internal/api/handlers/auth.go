package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/auth"
	"github.com/casapps/casrecipes/src/internal/email"
	"github.com/casapps/casrecipes/src/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	db          *gorm.DB
	users       *services.UserService
	authService *auth.AuthService
	totpService *auth.TOTPService
	config      *viper.Viper
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, config *viper.Viper) *AuthHandler {
	return &AuthHandler{
		db:          db,
		users:       services.NewUserService(db, config, email.NewNotifier(config)),
		authService: authService,
		totpService: auth.NewTOTPService(config.GetString("app.name")),
		config:      config,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password" validate:"required,min=8"`
}

// Register handles user registration
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.CreateUser(services.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserResponse(user, false))
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    time.Time     `json:"expires_at"`
	User         *UserResponse `json:"user,omitempty"`
	Require2FA   bool          `json:"require_2fa,omitempty"`
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.GetUserByLogin(req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if !user.IsActive {
		return echo.NewHTTPError(http.StatusUnauthorized, "account is disabled")
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if user.TwoFactorEnabled {
		if req.TOTPCode == "" {
			return c.JSON(http.StatusOK, LoginResponse{Require2FA: true})
		}
		if !h.totpService.ValidateTOTP(user.TwoFactorSecret, req.TOTPCode) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid 2FA code")
		}
	}

	tokenPair, err := h.authService.GenerateTokenPair(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate tokens")
	}

	now := time.Now()
	user.LastLoginAt = &now
	h.db.Save(user)

	resp := toUserResponse(user, false)
	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    tokenPair.ExpiresAt,
		User:         &resp,
	})
}

// Setup2FA generates a TOTP secret for the authenticated user. The secret
// only takes effect once confirmed via Enable2FA.
func (h *AuthHandler) Setup2FA(c echo.Context) error {
	userID, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.TwoFactorEnabled {
		return echo.NewHTTPError(http.StatusConflict, "2FA is already enabled")
	}

	setup, err := h.totpService.GenerateTOTP(user.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate 2FA secret")
	}

	user.TwoFactorSecret = setup.Secret
	if err := h.db.Save(user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store 2FA secret")
	}

	return c.JSON(http.StatusOK, setup)
}

// Enable2FARequest confirms a pending TOTP setup
type Enable2FARequest struct {
	Code string `json:"code" validate:"required"`
}

// Enable2FA verifies the first TOTP code and switches 2FA on
func (h *AuthHandler) Enable2FA(c echo.Context) error {
	userID, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req Enable2FARequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "2FA setup has not been started")
	}
	if !h.totpService.ValidateTOTP(user.TwoFactorSecret, req.Code) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid 2FA code")
	}

	user.TwoFactorEnabled = true
	if err := h.db.Save(user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to enable 2FA")
	}

	return c.JSON(http.StatusOK, map[string]bool{"enabled": true})
}
