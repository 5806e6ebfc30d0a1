package handler

import (
	"whisper-client/internal/pkg/logger"
	"whisper-client/internal/pkg/serverutils"
	"whisper-client/internal/service"
	internalWS "whisper-client/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StateHandler serves the UI change feed and a combined state snapshot.
type StateHandler struct {
	auth          service.IAuthService
	transcription service.ITranscriptionService
	chat          service.IChatSessionService
	hub           *internalWS.Hub
	logger        logger.ILogger
}

func NewStateHandler(
	auth service.IAuthService,
	transcription service.ITranscriptionService,
	chat service.IChatSessionService,
	hub *internalWS.Hub,
	log logger.ILogger,
) *StateHandler {
	return &StateHandler{
		auth:          auth,
		transcription: transcription,
		chat:          chat,
		hub:           hub,
		logger:        log,
	}
}

// ServeWs upgrades to a websocket that receives every state change envelope.
func (h *StateHandler) ServeWs(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StateHandler", "Starting WebSocket session", map[string]interface{}{"remote": conn.RemoteAddr().String()})
			internalWS.ServeWs(h.hub, conn)
			h.logger.Info("StateHandler", "WebSocket session ended", nil)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// Snapshot returns all three containers at once so a freshly loaded UI can
// render before the first change arrives.
func (h *StateHandler) Snapshot(c *fiber.Ctx) error {
	return c.JSON(serverutils.SuccessResponse("State snapshot", fiber.Map{
		"auth":          h.auth.State(),
		"transcription": h.transcription.State(),
		"chat":          h.chat.State(),
	}))
}

func (h *StateHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/state", h.Snapshot)
	router.Get("/ws", h.ServeWs)
}
