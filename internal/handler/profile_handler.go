package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Isaac-1-lang/Ecommerce/internal/response"
	"github.com/Isaac-1-lang/Ecommerce/internal/service"
)

type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

func (h *ProfileHandler) Register(router fiber.Router, requireAuth fiber.Handler) {
	users := router.Group("/users", requireAuth)
	users.Get("/profile", h.GetProfile)
	users.Put("/profile", h.UpdateProfile)
}

type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// GetProfile godoc
//
//	@Summary		Get profile
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	docs.User
//	@Failure		401	{object}	docs.ErrorInfo
//	@Router			/users/profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	user := GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, MsgNotAuthenticated)
	}

	profile, err := h.profiles.Get(c.UserContext(), user.ID)
	if err != nil {
		return HandleDomainError(c, h.logger, err)
	}
	return response.OK(c, toUserResponse(profile))
}

// UpdateProfile godoc
//
//	@Summary		Update profile
//	@Description	Updates name, address and phone. Omitted fields are left unchanged.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			input	body		docs.UpdateProfileRequest	true	"Profile fields"
//	@Success		200		{object}	docs.User
//	@Failure		400		{object}	docs.ErrorInfo
//	@Failure		401		{object}	docs.ErrorInfo
//	@Router			/users/profile [put]
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	user := GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, MsgNotAuthenticated)
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, MsgInvalidRequestBody)
	}

	updated, err := h.profiles.Update(c.UserContext(), user.ID, service.UpdateProfileInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	}, clientInfo(c))
	if err != nil {
		return HandleDomainError(c, h.logger, err)
	}
	return response.OK(c, toUserResponse(updated))
}
