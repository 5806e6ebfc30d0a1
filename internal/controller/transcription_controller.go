package controller

import (
	"io"
	"mime/multipart"
	"strconv"

	"whisper-client/internal/dto"
	"whisper-client/internal/pkg/serverutils"
	"whisper-client/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITranscriptionController interface {
	RegisterRoutes(r fiber.Router)
	Transcribe(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Current(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type transcriptionController struct {
	service service.ITranscriptionService
}

func NewTranscriptionController(service service.ITranscriptionService) ITranscriptionController {
	return &transcriptionController{service: service}
}

func (c *transcriptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/transcriptions")
	h.Post("", c.Transcribe)
	h.Get("", c.History)
	h.Delete("", c.ClearHistory)
	h.Get("/current", c.Current)
	h.Get("/stats", c.Stats)
	h.Get("/:id", c.Show)
	h.Get("/:id/export", c.Export)
	h.Delete("/:id", c.Delete)
}

func (c *transcriptionController) Transcribe(ctx *fiber.Ctx) error {
	req := dto.TranscriptionRequest{
		Language:          ctx.FormValue("language"),
		Task:              ctx.FormValue("task", "transcribe"),
		EnableDiarization: ctx.FormValue("enable_diarization") == "true",
		SessionId:         ctx.FormValue("session_id"),
	}

	// A missing file is reported by the service like any other invalid upload.
	if fh, err := ctx.FormFile("file"); err == nil {
		req.File = audioFileFromHeader(fh)
	}

	result, err := c.service.TranscribeAudio(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcription completed successfully", result))
}

func audioFileFromHeader(fh *multipart.FileHeader) dto.AudioFile {
	return dto.AudioFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (c *transcriptionController) History(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Transcription history", c.service.History()))
}

func (c *transcriptionController) Current(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Transcription state", c.service.State()))
}

func (c *transcriptionController) Stats(ctx *fiber.Ctx) error {
	stats := c.service.CurrentStats()
	if stats == nil {
		return service.ErrTranscriptionNotFound
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcription stats", stats))
}

func (c *transcriptionController) Show(ctx *fiber.Ctx) error {
	id, err := parseTranscriptionId(ctx)
	if err != nil {
		return err
	}
	result, err := c.service.GetTranscriptionByID(id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcription", result))
}

// Export returns the result as a downloadable text (default) or JSON document.
func (c *transcriptionController) Export(ctx *fiber.Ctx) error {
	id, err := parseTranscriptionId(ctx)
	if err != nil {
		return err
	}
	result, err := c.service.GetTranscriptionByID(id)
	if err != nil {
		return err
	}

	switch ctx.Query("format", "text") {
	case "json":
		body, err := c.service.ExportJSON(result)
		if err != nil {
			return err
		}
		ctx.Attachment(result.Filename + ".json")
		ctx.Type("json")
		return ctx.SendString(body)
	case "text":
		ctx.Attachment(result.Filename + ".txt")
		ctx.Type("txt")
		return ctx.SendString(c.service.ExportAsText(result))
	default:
		return fiber.NewError(fiber.StatusBadRequest, "Unsupported export format")
	}
}

func (c *transcriptionController) Delete(ctx *fiber.Ctx) error {
	id, err := parseTranscriptionId(ctx)
	if err != nil {
		return err
	}
	if err := c.service.DeleteTranscription(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcription deleted", nil))
}

func (c *transcriptionController) ClearHistory(ctx *fiber.Ctx) error {
	if err := c.service.ClearHistory(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcription history cleared", nil))
}

func parseTranscriptionId(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid transcription id")
	}
	return id, nil
}
