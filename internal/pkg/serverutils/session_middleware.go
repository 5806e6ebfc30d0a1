package serverutils

import (
	"whisper-client/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RequireSession rejects requests while nobody is signed in, and exposes the
// signed in user as ctx.Locals("user").
func RequireSession(auth service.IAuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !auth.IsAuthenticated() {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Authentication required"))
		}
		ctx.Locals("user", auth.CurrentUser())
		return ctx.Next()
	}
}
