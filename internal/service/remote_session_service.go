package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"whisper-client/internal/dto"
	"whisper-client/internal/entity"
	"whisper-client/internal/pkg/logger"
	"whisper-client/internal/pkg/validation"
	"whisper-client/pkg/backend"

	"github.com/patrickmn/go-cache"
)

const remoteSessionModule = "RemoteSessionService"

const (
	defaultRemoteSessionLimit = 100
	remoteSessionCacheTTL     = 30 * time.Second
)

// IRemoteSessionService manages chat sessions stored on the backend, as
// opposed to the local sessions kept by IChatSessionService.
type IRemoteSessionService interface {
	List(ctx context.Context, skip, limit int) ([]backend.RemoteSession, error)
	Create(ctx context.Context, req *dto.CreateRemoteSessionRequest) (*backend.RemoteSession, error)
	Get(ctx context.Context, id string) (*backend.RemoteSession, error)
	Update(ctx context.Context, id string, req *dto.UpdateRemoteSessionRequest) (*backend.RemoteSession, error)
	Delete(ctx context.Context, id string) error
	Transcribe(ctx context.Context, id string, req *dto.TranscriptionRequest) (*entity.TranscriptionResult, error)
}

type remoteSessionService struct {
	api         RemoteSessionAPI
	transcriber ITranscriptionService
	session     SessionReader
	validator   *validation.Validator
	logger      logger.ILogger
	known       *cache.Cache
	now         func() time.Time
}

func NewRemoteSessionService(
	api RemoteSessionAPI,
	transcriber ITranscriptionService,
	session SessionReader,
	validator *validation.Validator,
	log logger.ILogger,
) IRemoteSessionService {
	return &remoteSessionService{
		api:         api,
		transcriber: transcriber,
		session:     session,
		validator:   validator,
		logger:      log,
		known:       cache.New(remoteSessionCacheTTL, 2*remoteSessionCacheTTL),
		now:         time.Now,
	}
}

func (s *remoteSessionService) List(ctx context.Context, skip, limit int) ([]backend.RemoteSession, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > defaultRemoteSessionLimit {
		limit = defaultRemoteSessionLimit
	}

	sessions, err := s.api.ListSessions(ctx, skip, limit)
	if err != nil {
		return nil, backend.AsAPIError(err, "Failed to get chat sessions")
	}
	for _, rs := range sessions {
		s.known.SetDefault(rs.Id, rs)
	}
	return sessions, nil
}

func (s *remoteSessionService) Create(ctx context.Context, req *dto.CreateRemoteSessionRequest) (*backend.RemoteSession, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	created, err := s.api.CreateSession(ctx, backend.CreateSessionPayload{Title: req.Title})
	if err != nil {
		s.logger.Error(remoteSessionModule, "Failed to create remote session", map[string]interface{}{"error": err.Error()})
		return nil, backend.AsAPIError(err, "Failed to create chat session")
	}
	s.known.SetDefault(created.Id, *created)

	s.logger.Info(remoteSessionModule, "Remote session created", map[string]interface{}{"session_id": created.Id})
	return created, nil
}

// Get answers from a short-lived cache of sessions this client has already
// seen on the backend.
func (s *remoteSessionService) Get(ctx context.Context, id string) (*backend.RemoteSession, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := validRemoteId(id); err != nil {
		return nil, err
	}
	if v, ok := s.known.Get(id); ok {
		rs := v.(backend.RemoteSession)
		return &rs, nil
	}

	rs, err := s.api.GetSession(ctx, id)
	if err != nil {
		return nil, remoteNotFound(err, "Session not found")
	}
	s.known.SetDefault(id, *rs)
	return rs, nil
}

func (s *remoteSessionService) Update(ctx context.Context, id string, req *dto.UpdateRemoteSessionRequest) (*backend.RemoteSession, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := validRemoteId(id); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	s.known.Delete(id)
	rs, err := s.api.UpdateSession(ctx, id, backend.UpdateSessionPayload{
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, remoteNotFound(err, "Failed to update session")
	}
	s.known.SetDefault(id, *rs)
	return rs, nil
}

func (s *remoteSessionService) Delete(ctx context.Context, id string) error {
	if !s.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if err := validRemoteId(id); err != nil {
		return err
	}

	s.known.Delete(id)
	if err := s.api.DeleteSession(ctx, id); err != nil {
		return remoteNotFound(err, "Failed to delete session")
	}
	s.logger.Info(remoteSessionModule, "Remote session deleted", map[string]interface{}{"session_id": id})
	return nil
}

// Transcribe checks the session exists before uploading, so a stale id fails
// without streaming the audio.
func (s *remoteSessionService) Transcribe(ctx context.Context, id string, req *dto.TranscriptionRequest) (*entity.TranscriptionResult, error) {
	if _, err := s.Get(ctx, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w. Please create the session first", ErrSessionNotFound)
		}
		return nil, err
	}

	req.SessionId = id
	req.InRemoteSession = true
	if req.Language == "" {
		req.Language = "kk"
	}
	if req.Task == "" {
		req.Task = "transcribe"
	}
	return s.transcriber.TranscribeAudio(ctx, req)
}

func validRemoteId(id string) error {
	if id == "" || id == "undefined" {
		return validation.New("session_id", "Invalid session ID provided")
	}
	return nil
}

func remoteNotFound(err error, fallback string) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return ErrSessionNotFound
	}
	return backend.AsAPIError(err, fallback)
}
