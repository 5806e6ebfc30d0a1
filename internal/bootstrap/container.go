package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"whisper-client/internal/config"
	"whisper-client/internal/controller"
	"whisper-client/internal/handler"
	"whisper-client/internal/pkg/logger"
	"whisper-client/internal/pkg/validation"
	"whisper-client/internal/repository/contract"
	"whisper-client/internal/repository/implementation"
	"whisper-client/internal/repository/memory"
	"whisper-client/internal/service"
	"whisper-client/internal/websocket"
	"whisper-client/pkg/audio"
	"whisper-client/pkg/backend"
	"whisper-client/pkg/channel"
	"whisper-client/pkg/database"
	"whisper-client/pkg/events"
	pktNats "whisper-client/pkg/nats"

	"github.com/redis/go-redis/v9"
)

// Core holds the three state containers and the infrastructure they share.
// The CLI uses it directly; the HTTP server wraps it in a Container.
type Core struct {
	Logger  logger.ILogger
	Store   contract.KeyValueStore
	Bus     *events.Bus
	Backend *backend.Client

	AuthService          service.IAuthService
	TranscriptionService service.ITranscriptionService
	ChatSessionService   service.IChatSessionService
	RemoteSessionService service.IRemoteSessionService

	natsPub *pktNats.Publisher
}

type Container struct {
	*Core

	// Controllers
	AuthController          controller.IAuthController
	TranscriptionController controller.ITranscriptionController
	ChatSessionController   controller.IChatSessionController
	RemoteSessionController controller.IRemoteSessionController

	// WebSockets & UI change feed
	StateHandler *handler.StateHandler
	WebSocketHub *websocket.Hub

	hubRedis *redis.Client
}

func NewCore(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (*Core, error) {
	// 1. Storage
	store, err := NewKeyValueStore(ctx, cfg.Storage, !cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	sysLogger.Info("Bootstrap", "Client storage ready", map[string]interface{}{"driver": cfg.Storage.Driver})

	// 2. Event Bus, optionally mirrored to NATS
	var forwarders []events.Forwarder
	var natsPub *pktNats.Publisher
	if cfg.Events.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.Events.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			forwarders = append(forwarders, natsPub)
		}
	}
	bus := events.NewBus(cfg.Events.Topic, forwarders...)

	// 3. Remote backend
	backendClient := backend.NewClient(cfg.Backend.APIURL, cfg.Backend.RequestTimeout)
	validator := validation.NewValidator()

	// 4. Services
	authService := service.NewAuthService(
		ctx,
		backendClient,
		implementation.NewAuthSessionRepository(store),
		validator,
		bus,
		sysLogger,
		cfg.Session.TTL,
	)

	transcriptionService := service.NewTranscriptionService(
		ctx,
		backendClient,
		implementation.NewTranscriptionHistoryRepository(store),
		audio.ChainProber{audio.NewFFProbe(cfg.Transcription.FFprobePath), audio.NewWAVProber()},
		authService,
		validator,
		bus,
		sysLogger,
		service.TranscriptionSettings{
			MaxUploadBytes:     cfg.Transcription.MaxUploadBytes,
			HistoryLimit:       cfg.Transcription.HistoryLimit,
			ProgressClearDelay: cfg.Transcription.ProgressClearDelay,
		},
	)

	chatSessionService := service.NewChatSessionService(
		ctx,
		implementation.NewChatSessionRepository(store),
		implementation.NewChatMessageRepository(store),
		authService,
		transcriptionService,
		validator,
		bus,
		sysLogger,
		service.ChannelSettings{
			BaseURL:     cfg.Backend.WebSocketURL,
			Dialer:      channel.NewWebsocketDialer(),
			MaxAttempts: cfg.Channel.MaxAttempts,
			BaseDelay:   cfg.Channel.BaseDelay,
		},
	)

	remoteSessionService := service.NewRemoteSessionService(backendClient, transcriptionService, authService, validator, sysLogger)

	return &Core{
		Logger:               sysLogger,
		Store:                store,
		Bus:                  bus,
		Backend:              backendClient,
		AuthService:          authService,
		TranscriptionService: transcriptionService,
		ChatSessionService:   chatSessionService,
		RemoteSessionService: remoteSessionService,
		natsPub:              natsPub,
	}, nil
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	core, err := NewCore(ctx, cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	// Redis fan-out lets several instances sharing one Redis store feed each other's UIs.
	var rdb *redis.Client
	if cfg.Storage.Driver == "redis" {
		opt, err := redis.ParseURL(cfg.Storage.RedisURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.Storage.RedisURL}
		}
		rdb = redis.NewClient(opt)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.StateLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run(ctx)

	feed, err := core.Bus.Subscribe(ctx)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("subscribe to state bus: %w", err)
	}
	go wsHub.Forward(feed)

	return &Container{
		Core:                    core,
		AuthController:          controller.NewAuthController(core.AuthService),
		TranscriptionController: controller.NewTranscriptionController(core.TranscriptionService),
		ChatSessionController:   controller.NewChatSessionController(core.ChatSessionService, core.TranscriptionService, core.AuthService),
		RemoteSessionController: controller.NewRemoteSessionController(core.RemoteSessionService, core.AuthService),
		StateHandler:            handler.NewStateHandler(core.AuthService, core.TranscriptionService, core.ChatSessionService, wsHub, wsLogger),
		WebSocketHub:            wsHub,
		hubRedis:                rdb,
	}, nil
}

// NewKeyValueStore opens the storage backend named by cfg.Driver.
func NewKeyValueStore(ctx context.Context, cfg config.StorageConfig, verbose bool) (contract.KeyValueStore, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewKeyValueStore(), nil
	case "sqlite", "":
		return implementation.NewSQLiteKeyValueStore(cfg.SQLitePath)
	case "redis":
		return implementation.NewRedisKeyValueStore(ctx, cfg.RedisURL)
	case "postgres":
		if cfg.Connection == "" {
			return nil, errors.New("DB_CONNECTION_STRING is required for the postgres storage driver")
		}
		db, err := database.NewGormDBFromDSN(cfg.Connection, verbose)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return implementation.NewPostgresKeyValueStore(db)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Close stops background work and releases storage. The HTTP server must
// already be shut down.
func (c *Core) Close() error {
	c.ChatSessionService.Cleanup()
	c.TranscriptionService.Close()

	var errs []error
	if err := c.Bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close bus: %w", err))
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}

func (c *Container) Close() error {
	err := c.Core.Close()
	if c.hubRedis != nil {
		if cerr := c.hubRedis.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}
