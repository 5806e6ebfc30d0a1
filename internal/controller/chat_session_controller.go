package controller

import (
	"whisper-client/internal/dto"
	"whisper-client/internal/pkg/serverutils"
	"whisper-client/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatSessionController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Activate(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Import(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	AddMessage(ctx *fiber.Ctx) error
	AttachTranscription(ctx *fiber.Ctx) error
	StartRecording(ctx *fiber.Ctx) error
	StopRecording(ctx *fiber.Ctx) error
}

type chatSessionController struct {
	chatService          service.IChatSessionService
	transcriptionService service.ITranscriptionService
	authService          service.IAuthService
}

func NewChatSessionController(
	chatService service.IChatSessionService,
	transcriptionService service.ITranscriptionService,
	authService service.IAuthService,
) IChatSessionController {
	return &chatSessionController{
		chatService:          chatService,
		transcriptionService: transcriptionService,
		authService:          authService,
	}
}

func (c *chatSessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Use(serverutils.RequireSession(c.authService))
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Post("/import", c.Import)

	// "current" routes are registered before ":id" so they are not shadowed.
	h.Get("/current/messages", c.Messages)
	h.Post("/current/messages", c.AddMessage)
	h.Post("/current/transcriptions/:id", c.AttachTranscription)
	h.Post("/current/recording/start", c.StartRecording)
	h.Post("/current/recording/stop", c.StopRecording)

	h.Patch("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/activate", c.Activate)
	h.Get("/:id/export", c.Export)
	h.Get("/:id/stats", c.Stats)
}

func (c *chatSessionController) List(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Chat sessions", c.chatService.State()))
}

func (c *chatSessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateChatSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := c.chatService.CreateSession(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", session))
}

func (c *chatSessionController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateChatSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := c.chatService.UpdateSession(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session updated", session))
}

func (c *chatSessionController) Delete(ctx *fiber.Ctx) error {
	if err := c.chatService.DeleteSession(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session deleted", nil))
}

func (c *chatSessionController) Activate(ctx *fiber.Ctx) error {
	if err := c.chatService.SetCurrentSession(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session activated", c.chatService.State()))
}

func (c *chatSessionController) Export(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	body, err := c.chatService.ExportSession(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	ctx.Attachment("session-" + id + ".json")
	ctx.Type("json")
	return ctx.SendString(body)
}

func (c *chatSessionController) Import(ctx *fiber.Ctx) error {
	var req dto.ImportSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Data == "" {
		return service.ErrInvalidSessionData
	}

	session, err := c.chatService.ImportSession(ctx.UserContext(), req.Data)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session imported", session))
}

func (c *chatSessionController) Stats(ctx *fiber.Ctx) error {
	stats, err := c.chatService.GetSessionStats(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session stats", stats))
}

func (c *chatSessionController) Messages(ctx *fiber.Ctx) error {
	if c.chatService.CurrentSession() == nil {
		return service.ErrNoActiveSession
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages", c.chatService.Messages()))
}

func (c *chatSessionController) AddMessage(ctx *fiber.Ctx) error {
	var req dto.AddMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	message, err := c.chatService.AddMessage(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Message added", message))
}

func (c *chatSessionController) AttachTranscription(ctx *fiber.Ctx) error {
	id, err := parseTranscriptionId(ctx)
	if err != nil {
		return err
	}
	result, err := c.transcriptionService.GetTranscriptionByID(id)
	if err != nil {
		return err
	}
	if err := c.chatService.AddTranscriptionToSession(ctx.UserContext(), result); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcription added to session", c.chatService.CurrentSession()))
}

func (c *chatSessionController) StartRecording(ctx *fiber.Ctx) error {
	if err := c.chatService.StartRecording(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Recording started", c.chatService.RecordingState()))
}

func (c *chatSessionController) StopRecording(ctx *fiber.Ctx) error {
	if err := c.chatService.StopRecording(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Recording stopped", c.chatService.RecordingState()))
}
