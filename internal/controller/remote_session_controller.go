package controller

import (
	"whisper-client/internal/dto"
	"whisper-client/internal/pkg/serverutils"
	"whisper-client/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRemoteSessionController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Transcribe(ctx *fiber.Ctx) error
}

type remoteSessionController struct {
	service     service.IRemoteSessionService
	authService service.IAuthService
}

func NewRemoteSessionController(service service.IRemoteSessionService, authService service.IAuthService) IRemoteSessionController {
	return &remoteSessionController{service: service, authService: authService}
}

func (c *remoteSessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/remote-sessions")
	h.Use(serverutils.RequireSession(c.authService))
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/transcribe", c.Transcribe)
}

func (c *remoteSessionController) List(ctx *fiber.Ctx) error {
	sessions, err := c.service.List(ctx.UserContext(), ctx.QueryInt("skip", 0), ctx.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Remote sessions", sessions))
}

func (c *remoteSessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateRemoteSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Remote session created", session))
}

func (c *remoteSessionController) Show(ctx *fiber.Ctx) error {
	session, err := c.service.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Remote session", session))
}

func (c *remoteSessionController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateRemoteSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := c.service.Update(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Remote session updated", session))
}

func (c *remoteSessionController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session deleted successfully", nil))
}

// Transcribe accepts the audio as "file" or, like the web client, "audio".
func (c *remoteSessionController) Transcribe(ctx *fiber.Ctx) error {
	req := dto.TranscriptionRequest{
		Language:          ctx.FormValue("language", "kk"),
		Task:              ctx.FormValue("task", "transcribe"),
		EnableDiarization: ctx.FormValue("enable_diarization") == "true",
	}
	if fh, err := ctx.FormFile("file"); err == nil {
		req.File = audioFileFromHeader(fh)
	} else if fh, err := ctx.FormFile("audio"); err == nil {
		req.File = audioFileFromHeader(fh)
	}

	result, err := c.service.Transcribe(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcription completed successfully", result))
}
