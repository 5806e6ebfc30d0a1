// FILE: internal/controller/auth_controller.go
package controller

import (
	"whisper-client/internal/dto"
	"whisper-client/internal/pkg/serverutils"
	"whisper-client/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	SignUp(ctx *fiber.Ctx) error
	SignIn(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
	Validate(ctx *fiber.Ctx) error
	PasswordStrength(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/sign-up", c.SignUp)
	h.Post("/sign-in", c.SignIn)
	h.Post("/logout", c.Logout)
	h.Get("/session", c.Session)
	h.Get("/validate", c.Validate)
	h.Post("/password-strength", c.PasswordStrength)
}

func (c *authController) SignUp(ctx *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := c.service.SignUp(ctx.UserContext(), &req); err != nil {
		code := serverutils.StatusFor(err)
		return ctx.Status(code).JSON(serverutils.ErrorResponse(code, c.service.State().Error))
	}
	return ctx.JSON(serverutils.SuccessResponse("Account created", c.service.State()))
}

func (c *authController) SignIn(ctx *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := c.service.SignIn(ctx.UserContext(), &req); err != nil {
		code := serverutils.StatusFor(err)
		return ctx.Status(code).JSON(serverutils.ErrorResponse(code, c.service.State().Error))
	}
	return ctx.JSON(serverutils.SuccessResponse("Signed in", c.service.State()))
}

// Logout always succeeds; remote failures are logged by the service.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	c.service.Logout(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Logged out successfully", nil))
}

func (c *authController) Session(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Session state", c.service.State()))
}

func (c *authController) Validate(ctx *fiber.Ctx) error {
	user, err := c.service.Validate(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session is valid", user))
}

func (c *authController) PasswordStrength(ctx *fiber.Ctx) error {
	var req dto.PasswordStrengthRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return ctx.JSON(serverutils.SuccessResponse("Password strength", c.service.PasswordStrength(req.Password)))
}
