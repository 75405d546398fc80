package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/response"
	"github.com/Isaac-1-lang/Ecommerce/internal/service"
)

type AuthHandler struct {
	sessions *service.SessionService
	logger   *slog.Logger
}

type AuthHandlerConfig struct {
	Sessions *service.SessionService
	Logger   *slog.Logger
}

func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
	}
}

// Register mounts the public auth routes. limiter guards login and
// registration; requireAuth guards the routes that need a live session.
func (h *AuthHandler) Register(router fiber.Router, limiter, requireAuth fiber.Handler) {
	auth := router.Group("/auth")
	auth.Post("/login", limiter, h.Login)
	auth.Post("/register", limiter, h.RegisterUser)
	auth.Post("/logout", h.Logout)
	auth.Post("/refresh", h.Refresh)
	auth.Get("/me", requireAuth, h.Me)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	Address   string      `json:"address,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	Role      domain.Role  `json:"role"`
	ExpiresIn int64        `json:"expiresIn"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type RefreshResponse struct {
	Token     string    `json:"token"`
	Rotated   bool      `json:"rotated"`
	Message   string    `json:"message"`
	ExpiresIn int64     `json:"expiresIn"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MeResponse struct {
	User             UserResponse `json:"user"`
	SessionID        string       `json:"sessionId"`
	ExpiresAt        time.Time    `json:"expiresAt"`
	RemainingSeconds int64        `json:"remainingSeconds"`
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verifies credentials and starts a session, ending any previous session of the user
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			input	body		docs.LoginRequest	true	"Credentials"
//	@Success		200		{object}	docs.AuthResponse
//	@Failure		401		{object}	docs.ErrorInfo
//	@Failure		429		{object}	docs.ErrorInfo
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, MsgInvalidRequestBody)
	}

	result, err := h.sessions.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		return HandleDomainError(c, h.logger, err)
	}

	return response.OK(c, toAuthResponse(result))
}

// RegisterUser godoc
//
//	@Summary		Register
//	@Description	Creates a customer or seller account and starts its first session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			input	body		docs.RegisterRequest	true	"New account"
//	@Success		201		{object}	docs.AuthResponse
//	@Failure		400		{object}	docs.ErrorInfo
//	@Router			/auth/register [post]
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, MsgInvalidRequestBody)
	}

	result, err := h.sessions.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
		Client:   clientInfo(c),
	})
	if err != nil {
		return HandleDomainError(c, h.logger, err)
	}

	return response.Created(c, toAuthResponse(result))
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Revokes the session bound to the bearer token. Always succeeds.
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	docs.MessageResponse
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Logout(c.UserContext(), service.LogoutInput{
		Token:  BearerToken(c),
		Client: clientInfo(c),
	})
	return response.OK(c, MessageResponse{Message: MsgLoggedOut})
}

// Refresh godoc
//
//	@Summary		Refresh session
//	@Description	Returns the same token while it has more than the refresh threshold left, otherwise a new one
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	docs.RefreshResponse
//	@Failure		401	{object}	docs.ErrorInfo
//	@Router			/auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	result, err := h.sessions.Refresh(c.UserContext(), service.RefreshInput{
		Token:  BearerToken(c),
		Client: clientInfo(c),
	})
	if err != nil {
		return HandleDomainError(c, h.logger, err)
	}

	message := MsgSessionValid
	if result.Rotated {
		message = MsgSessionRefreshed
	}

	return response.OK(c, RefreshResponse{
		Token:     result.Token,
		Rotated:   result.Rotated,
		Message:   message,
		ExpiresIn: result.ExpiresIn.Milliseconds(),
		ExpiresAt: result.ExpiresAt,
	})
}

// Me godoc
//
//	@Summary		Current user
//	@Description	Returns the authenticated user and the expiry of the current session
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	docs.MeResponse
//	@Failure		401	{object}	docs.ErrorInfo
//	@Router			/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal := GetPrincipalFromContext(c)
	if principal == nil {
		return response.Unauthorized(c, MsgNotAuthenticated)
	}

	remaining := principal.Remaining
	if remaining < 0 {
		remaining = 0
	}

	return response.OK(c, MeResponse{
		User:             toUserResponse(principal.User),
		SessionID:        principal.Session.ID,
		ExpiresAt:        principal.Session.ExpiresAt,
		RemainingSeconds: int64(remaining / time.Second),
	})
}

func toAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		Token:     result.Token,
		Role:      result.User.Role,
		ExpiresIn: result.ExpiresIn.Milliseconds(),
		ExpiresAt: result.ExpiresAt,
		User:      toUserResponse(result.User),
	}
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Address:   user.Address,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
}
