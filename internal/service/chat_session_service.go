package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"whisper-client/internal/constant"
	"whisper-client/internal/dto"
	"whisper-client/internal/entity"
	"whisper-client/internal/pkg/logger"
	"whisper-client/internal/pkg/validation"
	"whisper-client/internal/repository/contract"
	"whisper-client/pkg/channel"
	"whisper-client/pkg/events"

	"github.com/google/uuid"
)

const chatModule = "ChatSessionService"

type IChatSessionService interface {
	CreateSession(ctx context.Context, req *dto.CreateChatSessionRequest) (*entity.ChatSession, error)
	UpdateSession(ctx context.Context, id string, req *dto.UpdateChatSessionRequest) (*entity.ChatSession, error)
	DeleteSession(ctx context.Context, id string) error
	SetCurrentSession(ctx context.Context, id string) error
	AddMessage(ctx context.Context, req *dto.AddMessageRequest) (*entity.ChatMessage, error)
	AddTranscriptionToSession(ctx context.Context, result *entity.TranscriptionResult) error
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) error
	ExportSession(ctx context.Context, id string) (string, error)
	ImportSession(ctx context.Context, data string) (*entity.ChatSession, error)
	GetSessionStats(ctx context.Context, id string) (*entity.SessionStats, error)
	Sessions() []entity.ChatSession
	CurrentSession() *entity.ChatSession
	Messages() []entity.ChatMessage
	ChannelState() channel.State
	RecordingState() entity.RecordingState
	SetError(ctx context.Context, message string)
	State() dto.ChatStateResponse
	Cleanup()
}

// ChannelSettings configures the per-session duplex channel. An empty BaseURL
// or a nil Dialer keeps the service offline.
type ChannelSettings struct {
	BaseURL     string
	Dialer      channel.Dialer
	MaxAttempts int
	BaseDelay   time.Duration
	AfterFunc   func(d time.Duration, f func()) channel.Timer
}

// Ticker drives the recording clock.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) Chan() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()                  { t.t.Stop() }

type recorder struct {
	ticker Ticker
	stop   chan struct{}
	done   chan struct{}
}

type chatSessionService struct {
	sessionRepo contract.ChatSessionRepository
	messageRepo contract.ChatMessageRepository
	auth        SessionReader
	progress    ProgressSink
	validator   *validation.Validator
	emitter     events.Emitter
	logger      logger.ILogger
	channelCfg  ChannelSettings
	now         func() time.Time
	newId       func() string
	newTicker   func(d time.Duration) Ticker

	// switchMu serializes everything that replaces or closes the channel.
	switchMu sync.Mutex
	// persistMu is held from snapshot to save, so a stored key never moves
	// back to an older snapshot. Lock order: switchMu, persistMu, mu.
	persistMu sync.Mutex

	mu        sync.Mutex
	sessions  []entity.ChatSession
	currentId string
	messages  []entity.ChatMessage
	recording entity.RecordingState
	rec       *recorder
	ch        *channel.Channel
	lastError string
	cleaned   bool
}

func NewChatSessionService(
	ctx context.Context,
	sessionRepo contract.ChatSessionRepository,
	messageRepo contract.ChatMessageRepository,
	auth SessionReader,
	progress ProgressSink,
	validator *validation.Validator,
	emitter events.Emitter,
	log logger.ILogger,
	channelCfg ChannelSettings,
) IChatSessionService {
	s := &chatSessionService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		auth:        auth,
		progress:    progress,
		validator:   validator,
		emitter:     emitter,
		logger:      log,
		channelCfg:  channelCfg,
		now:         time.Now,
		newId:       uuid.NewString,
		newTicker:   func(d time.Duration) Ticker { return timeTicker{t: time.NewTicker(d)} },
		sessions:    []entity.ChatSession{},
		messages:    []entity.ChatMessage{},
	}

	sessions, err := sessionRepo.FindAll(ctx)
	if err != nil {
		log.Warn(chatModule, "Failed to load chat sessions", map[string]interface{}{"error": err.Error()})
	} else if sessions != nil {
		s.sessions = sessions
	}
	return s
}

func (s *chatSessionService) CreateSession(ctx context.Context, req *dto.CreateChatSessionRequest) (*entity.ChatSession, error) {
	if err := s.validator.Struct(req); err != nil {
		s.SetError(ctx, err.Error())
		return nil, err
	}

	now := s.now()
	session := entity.ChatSession{
		Id:             s.newId(),
		Name:           req.Name,
		Description:    req.Description,
		Language:       req.Language,
		Settings:       req.Settings,
		Transcriptions: []entity.TranscriptionResult{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if user := s.auth.CurrentUser(); user != nil {
		id := user.Id
		session.UserId = &id
	}

	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.persistMu.Lock()
	s.mu.Lock()
	s.sessions = append([]entity.ChatSession{session}, s.sessions...)
	s.currentId = session.Id
	s.messages = []entity.ChatMessage{}
	s.lastError = ""
	snapshot := slices.Clone(s.sessions)
	s.mu.Unlock()
	s.persistSessions(ctx, snapshot)
	s.persistMu.Unlock()

	s.logger.Info(chatModule, "Chat session created", map[string]interface{}{"session_id": session.Id, "name": session.Name})

	s.replaceChannel(session.Id)
	s.emitState(ctx)
	return &session, nil
}

func (s *chatSessionService) UpdateSession(ctx context.Context, id string, req *dto.UpdateChatSessionRequest) (*entity.ChatSession, error) {
	if err := s.validator.Struct(req); err != nil {
		s.SetError(ctx, err.Error())
		return nil, err
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	session := s.sessions[idx]
	if req.Name != nil {
		session.Name = *req.Name
	}
	if req.Description != nil {
		session.Description = *req.Description
	}
	if req.Language != nil {
		session.Language = *req.Language
	}
	if req.Settings != nil {
		session.Settings = *req.Settings
	}
	session.UpdatedAt = s.now()
	s.sessions[idx] = session
	snapshot := slices.Clone(s.sessions)
	s.mu.Unlock()

	s.persistSessions(ctx, snapshot)
	s.emitState(ctx)
	return &session, nil
}

// DeleteSession removes a session and its stored messages. Deleting the
// current session also tears down its channel and any running recording.
func (s *chatSessionService) DeleteSession(ctx context.Context, id string) error {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.persistMu.Lock()
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		s.persistMu.Unlock()
		return ErrSessionNotFound
	}
	s.sessions = slices.Delete(slices.Clone(s.sessions), idx, idx+1)
	wasCurrent := s.currentId == id
	var ch *channel.Channel
	var rec *recorder
	if wasCurrent {
		s.currentId = ""
		s.messages = []entity.ChatMessage{}
		ch, s.ch = s.ch, nil
		rec, s.rec = s.rec, nil
		s.recording = entity.RecordingState{}
	}
	snapshot := slices.Clone(s.sessions)
	s.mu.Unlock()

	s.persistSessions(ctx, snapshot)
	if err := s.messageRepo.DeleteBySessionId(ctx, id); err != nil {
		s.logger.Error(chatModule, "Failed to delete session messages", map[string]interface{}{"session_id": id, "error": err.Error()})
	}
	s.persistMu.Unlock()

	rec.halt()
	if ch != nil {
		_ = ch.Close()
	}

	s.logger.Info(chatModule, "Chat session deleted", map[string]interface{}{"session_id": id, "was_current": wasCurrent})
	s.emitState(ctx)
	return nil
}

func (s *chatSessionService) SetCurrentSession(ctx context.Context, id string) error {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx >= 0 {
		// Keep the stored id, not the caller's string.
		id = s.sessions[idx].Id
	}
	s.mu.Unlock()
	if idx < 0 {
		return ErrSessionNotFound
	}

	messages, err := s.messageRepo.FindBySessionId(ctx, id)
	if err != nil {
		s.logger.Warn(chatModule, "Failed to load session messages", map[string]interface{}{"session_id": id, "error": err.Error()})
		messages = nil
	}
	if messages == nil {
		messages = []entity.ChatMessage{}
	}

	s.mu.Lock()
	s.currentId = id
	s.messages = messages
	s.mu.Unlock()

	s.replaceChannel(id)
	s.emitState(ctx)
	return nil
}

// replaceChannel closes the current channel and, while authenticated, opens
// one bound to sessionId. Callers hold switchMu.
func (s *chatSessionService) replaceChannel(sessionId string) {
	s.mu.Lock()
	old := s.ch
	s.ch = nil
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	if !s.auth.IsAuthenticated() || s.channelCfg.BaseURL == "" || s.channelCfg.Dialer == nil {
		return
	}

	ch := s.newChannel(sessionId)

	s.mu.Lock()
	if s.cleaned {
		s.mu.Unlock()
		return
	}
	s.ch = ch
	s.mu.Unlock()

	ch.Open()
}

func (s *chatSessionService) newChannel(sessionId string) *channel.Channel {
	dispatcher := channel.NewDispatcher(s.logger)
	dispatcher.Handle(constant.ChannelEventTranscriptionProgress, s.handleProgressFrame)
	dispatcher.Handle(constant.ChannelEventNewMessage, func(frame json.RawMessage) error {
		return s.handleNewMessageFrame(sessionId, frame)
	})

	return channel.New(channel.Options{
		URL:         strings.TrimRight(s.channelCfg.BaseURL, "/") + "/ws/chat/" + url.PathEscape(sessionId),
		Dialer:      s.channelCfg.Dialer,
		MaxAttempts: s.channelCfg.MaxAttempts,
		BaseDelay:   s.channelCfg.BaseDelay,
		AfterFunc:   s.channelCfg.AfterFunc,
		Logger:      s.logger,
		OnOpen: func(c *channel.Channel) {
			token := s.auth.Token()
			if token == "" {
				return
			}
			if err := c.SendJSON(map[string]string{"type": constant.ChannelEventAuth, "token": token}); err != nil {
				s.logger.Warn(chatModule, "Failed to send channel auth frame", map[string]interface{}{"error": err.Error()})
			}
		},
		OnMessage: func(data []byte) {
			if s.isCurrent(sessionId) {
				dispatcher.Dispatch(data)
			}
		},
		OnStateChange: func(st channel.State) {
			s.emit(context.Background(), events.TypeChannelState, map[string]interface{}{
				"session_id": sessionId,
				"state":      st.String(),
			})
		},
	})
}

func (s *chatSessionService) handleProgressFrame(frame json.RawMessage) error {
	var msg struct {
		Progress entity.TranscriptionProgress `json:"progress"`
	}
	if err := json.Unmarshal(frame, &msg); err != nil {
		return fmt.Errorf("decode progress frame: %w", err)
	}
	if s.progress != nil && s.progress.IsProcessing() {
		s.progress.SetProgress(context.Background(), msg.Progress)
	}
	return nil
}

func (s *chatSessionService) handleNewMessageFrame(sessionId string, frame json.RawMessage) error {
	var msg struct {
		Message entity.ChatMessage `json:"message"`
	}
	if err := json.Unmarshal(frame, &msg); err != nil {
		return fmt.Errorf("decode message frame: %w", err)
	}
	message := msg.Message
	if message.SessionId == "" {
		message.SessionId = sessionId
	}

	ctx := context.Background()
	s.persistMu.Lock()
	s.mu.Lock()
	if s.currentId != sessionId {
		s.mu.Unlock()
		s.persistMu.Unlock()
		return nil
	}
	s.messages = append(s.messages, message)
	snapshot := slices.Clone(s.messages)
	s.mu.Unlock()
	s.persistMessages(ctx, sessionId, snapshot)
	s.persistMu.Unlock()

	s.emit(ctx, events.TypeChatMessage, map[string]interface{}{"message": message})
	return nil
}

// AddMessage records a message on the current session and, when the channel
// is open, forwards it. Nothing is queued while the channel is down.
func (s *chatSessionService) AddMessage(ctx context.Context, req *dto.AddMessageRequest) (*entity.ChatMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	sender := req.Sender
	if sender == "" {
		sender = constant.ChatMessageSenderUser
	}
	return s.addMessage(ctx, entity.ChatMessage{
		Type:     req.Type,
		Content:  req.Content,
		AudioURL: req.AudioURL,
		Sender:   sender,
	})
}

func (s *chatSessionService) addMessage(ctx context.Context, message entity.ChatMessage) (*entity.ChatMessage, error) {
	s.persistMu.Lock()
	s.mu.Lock()
	if s.currentId == "" {
		s.mu.Unlock()
		s.persistMu.Unlock()
		return nil, ErrNoActiveSession
	}
	message.Id = s.newId()
	message.SessionId = s.currentId
	message.Timestamp = s.now()
	s.messages = append(s.messages, message)
	snapshot := slices.Clone(s.messages)
	sessionId := s.currentId
	ch := s.ch
	s.mu.Unlock()
	s.persistMessages(ctx, sessionId, snapshot)
	s.persistMu.Unlock()

	if ch != nil && ch.State() == channel.StateOpen {
		err := ch.SendJSON(map[string]interface{}{"type": constant.ChannelEventNewMessage, "data": message})
		if err != nil {
			s.logger.Warn(chatModule, "Failed to forward message", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
		}
	}

	s.emit(ctx, events.TypeChatMessage, map[string]interface{}{"message": message})
	return &message, nil
}

func (s *chatSessionService) AddTranscriptionToSession(ctx context.Context, result *entity.TranscriptionResult) error {
	if result == nil {
		return validation.New("transcription", "Transcription is required")
	}

	s.persistMu.Lock()
	s.mu.Lock()
	if s.currentId == "" {
		s.mu.Unlock()
		s.persistMu.Unlock()
		return ErrNoActiveSession
	}
	idx := s.indexOf(s.currentId)
	if idx < 0 {
		s.mu.Unlock()
		s.persistMu.Unlock()
		return ErrSessionNotFound
	}
	session := s.sessions[idx]
	session.Transcriptions = append(slices.Clone(session.Transcriptions), *result)
	session.UpdatedAt = s.now()
	s.sessions[idx] = session
	snapshot := slices.Clone(s.sessions)
	s.mu.Unlock()
	s.persistSessions(ctx, snapshot)
	s.persistMu.Unlock()

	transcription := *result
	if _, err := s.addMessage(ctx, entity.ChatMessage{
		Type:          entity.MessageKindAudio,
		Content:       result.Text,
		AudioURL:      result.AudioURL,
		Transcription: &transcription,
		Sender:        constant.ChatMessageSenderUser,
	}); err != nil {
		return err
	}

	s.emitState(ctx)
	return nil
}

func (s *chatSessionService) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.cleaned {
		s.mu.Unlock()
		return ErrServiceClosed
	}
	if s.currentId == "" {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	if s.recording.IsRecording {
		s.mu.Unlock()
		return ErrAlreadyRecording
	}
	rec := &recorder{
		ticker: s.newTicker(time.Second),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.rec = rec
	s.recording = entity.RecordingState{IsRecording: true}
	s.mu.Unlock()

	go s.runRecorder(rec)

	if _, err := s.addMessage(ctx, entity.ChatMessage{
		Type:    entity.MessageKindSystem,
		Content: constant.RecordingStartedMessage,
		Sender:  constant.ChatMessageSenderSystem,
	}); err != nil {
		return err
	}
	s.emitState(ctx)
	return nil
}

func (s *chatSessionService) runRecorder(rec *recorder) {
	defer close(rec.done)
	for {
		select {
		case <-rec.stop:
			return
		case <-rec.ticker.Chan():
			s.mu.Lock()
			if s.rec == rec {
				s.recording.Duration++
			}
			s.mu.Unlock()
		}
	}
}

// halt stops the ticker and waits for the clock goroutine to exit.
func (r *recorder) halt() {
	if r == nil {
		return
	}
	close(r.stop)
	r.ticker.Stop()
	<-r.done
}

func (s *chatSessionService) StopRecording(ctx context.Context) error {
	s.mu.Lock()
	if !s.recording.IsRecording {
		s.mu.Unlock()
		return ErrNotRecording
	}
	rec := s.rec
	s.rec = nil
	s.mu.Unlock()

	rec.halt()

	s.mu.Lock()
	duration := s.recording.Duration
	s.recording = entity.RecordingState{}
	s.mu.Unlock()

	if _, err := s.addMessage(ctx, entity.ChatMessage{
		Type:    entity.MessageKindSystem,
		Content: fmt.Sprintf("Recording stopped (%s)", formatRecordingDuration(duration)),
		Sender:  constant.ChatMessageSenderSystem,
	}); err != nil {
		return err
	}
	s.emitState(ctx)
	return nil
}

func formatRecordingDuration(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (s *chatSessionService) ExportSession(ctx context.Context, id string) (string, error) {
	session, err := s.findSession(id)
	if err != nil {
		return "", err
	}
	messages, err := s.messageRepo.FindBySessionId(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load session messages: %w", err)
	}
	if messages == nil {
		messages = []entity.ChatMessage{}
	}

	data, err := json.MarshalIndent(dto.SessionExport{
		Session:    session,
		Messages:   messages,
		ExportedAt: s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal session export: %w", err)
	}
	return string(data), nil
}

// ImportSession adds an exported session under a fresh id. It does not
// change the current session.
func (s *chatSessionService) ImportSession(ctx context.Context, data string) (*entity.ChatSession, error) {
	var doc dto.SessionExport
	if err := json.Unmarshal([]byte(data), &doc); err != nil || doc.Session == nil {
		return nil, ErrInvalidSessionData
	}

	session := *doc.Session
	session.Id = s.newId()
	session.UpdatedAt = s.now()
	if session.Transcriptions == nil {
		session.Transcriptions = []entity.TranscriptionResult{}
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.sessions = append([]entity.ChatSession{session}, s.sessions...)
	snapshot := slices.Clone(s.sessions)
	s.mu.Unlock()

	if len(doc.Messages) > 0 {
		messages := make([]entity.ChatMessage, len(doc.Messages))
		for i, m := range doc.Messages {
			m.SessionId = session.Id
			messages[i] = m
		}
		s.persistMessages(ctx, session.Id, messages)
	}

	s.persistSessions(ctx, snapshot)
	s.logger.Info(chatModule, "Chat session imported", map[string]interface{}{"session_id": session.Id, "messages": len(doc.Messages)})
	s.emitState(ctx)
	return &session, nil
}

func (s *chatSessionService) GetSessionStats(ctx context.Context, id string) (*entity.SessionStats, error) {
	session, err := s.findSession(id)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindBySessionId(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session messages: %w", err)
	}

	audioMessages := 0
	for _, m := range messages {
		if m.Type == entity.MessageKindAudio {
			audioMessages++
		}
	}

	var totalDuration float64
	speakers := make(map[string]struct{})
	emotions := make(map[string]int)
	for _, t := range session.Transcriptions {
		totalDuration += t.Duration
		for _, seg := range t.Segments {
			speakers[seg.Speaker] = struct{}{}
			emotions[seg.Emotion]++
		}
	}

	return &entity.SessionStats{
		TotalMessages:       len(messages),
		AudioMessages:       audioMessages,
		TotalTranscriptions: len(session.Transcriptions),
		TotalDuration:       int64(math.Round(totalDuration)),
		UniqueSpeakers:      len(speakers),
		Emotions:            emotions,
		CreatedAt:           session.CreatedAt,
		UpdatedAt:           session.UpdatedAt,
	}, nil
}

func (s *chatSessionService) Sessions() []entity.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sessions)
}

func (s *chatSessionService) CurrentSession() *entity.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *chatSessionService) Messages() []entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

func (s *chatSessionService) ChannelState() channel.State {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	if ch == nil {
		return channel.StateClosed
	}
	return ch.State()
}

func (s *chatSessionService) RecordingState() entity.RecordingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

func (s *chatSessionService) SetError(ctx context.Context, message string) {
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
	s.emitState(ctx)
}

func (s *chatSessionService) State() dto.ChatStateResponse {
	channelState := s.ChannelState()

	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.ChatStateResponse{
		Sessions:       slices.Clone(s.sessions),
		CurrentSession: s.currentLocked(),
		Messages:       slices.Clone(s.messages),
		ChannelState:   channelState.String(),
		Recording:      s.recording,
		Error:          s.lastError,
	}
}

// Cleanup stops the recording clock and closes the channel. Calling it again
// is a no-op.
func (s *chatSessionService) Cleanup() {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.mu.Lock()
	if s.cleaned {
		s.mu.Unlock()
		return
	}
	s.cleaned = true
	rec := s.rec
	s.rec = nil
	s.recording.IsRecording = false
	ch := s.ch
	s.ch = nil
	s.mu.Unlock()

	rec.halt()
	if ch != nil {
		_ = ch.Close()
	}
}

func (s *chatSessionService) indexOf(id string) int {
	return slices.IndexFunc(s.sessions, func(cs entity.ChatSession) bool { return cs.Id == id })
}

func (s *chatSessionService) currentLocked() *entity.ChatSession {
	if s.currentId == "" {
		return nil
	}
	idx := s.indexOf(s.currentId)
	if idx < 0 {
		return nil
	}
	out := s.sessions[idx]
	return &out
}

func (s *chatSessionService) isCurrent(sessionId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentId == sessionId
}

func (s *chatSessionService) findSession(id string) (*entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrSessionNotFound
	}
	out := s.sessions[idx]
	return &out, nil
}

func (s *chatSessionService) persistSessions(ctx context.Context, sessions []entity.ChatSession) {
	if err := s.sessionRepo.SaveAll(ctx, sessions); err != nil {
		s.logger.Error(chatModule, "Failed to persist chat sessions", map[string]interface{}{"error": err.Error()})
	}
}

func (s *chatSessionService) persistMessages(ctx context.Context, sessionId string, messages []entity.ChatMessage) {
	if err := s.messageRepo.SaveForSession(ctx, sessionId, messages); err != nil {
		s.logger.Error(chatModule, "Failed to persist chat messages", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
	}
}

func (s *chatSessionService) emitState(ctx context.Context) {
	s.emit(ctx, events.TypeChatChanged, map[string]interface{}{"state": s.State()})
}

func (s *chatSessionService) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.emitter.Emit(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn(chatModule, "Failed to emit state change", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}
