package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"slices"
	"strings"
	"sync"
	"time"

	"whisper-client/internal/constant"
	"whisper-client/internal/dto"
	"whisper-client/internal/entity"
	"whisper-client/internal/mapper"
	"whisper-client/internal/pkg/logger"
	"whisper-client/internal/pkg/validation"
	"whisper-client/internal/repository/contract"
	"whisper-client/pkg/audio"
	"whisper-client/pkg/backend"
	"whisper-client/pkg/events"
)

const transcriptionModule = "TranscriptionService"

type ITranscriptionService interface {
	ProgressSink

	TranscribeAudio(ctx context.Context, req *dto.TranscriptionRequest) (*entity.TranscriptionResult, error)
	GetTranscriptionByID(id int64) (*entity.TranscriptionResult, error)
	DeleteTranscription(ctx context.Context, id int64) error
	ClearHistory(ctx context.Context) error
	History() []entity.TranscriptionResult
	Current() *entity.TranscriptionResult
	CurrentStats() *entity.TranscriptionStats
	ExportAsText(result *entity.TranscriptionResult) string
	ExportJSON(result *entity.TranscriptionResult) (string, error)
	ClearProgress(ctx context.Context)
	SetError(ctx context.Context, message string)
	State() dto.TranscriptionStateResponse
	Close()
}

type TranscriptionSettings struct {
	MaxUploadBytes     int64
	HistoryLimit       int
	ProgressClearDelay time.Duration
}

type transcriptionService struct {
	api       TranscriptionAPI
	repo      contract.TranscriptionHistoryRepository
	prober    audio.Prober
	session   SessionReader
	validator *validation.Validator
	emitter   events.Emitter
	logger    logger.ILogger
	mapper    *mapper.TranscriptionMapper
	settings  TranscriptionSettings
	now       func() time.Time
	afterFunc func(d time.Duration, f func()) *time.Timer

	// persistMu is held from snapshot to save so the stored history never
	// moves back to an older snapshot. Taken before mu.
	persistMu sync.Mutex

	mu           sync.Mutex
	isProcessing bool
	current      *entity.TranscriptionResult
	history      []entity.TranscriptionResult
	progress     *entity.TranscriptionProgress
	analysis     entity.AudioAnalysis
	lastError    string
	clearTimer   *time.Timer
}

func NewTranscriptionService(
	ctx context.Context,
	api TranscriptionAPI,
	repo contract.TranscriptionHistoryRepository,
	prober audio.Prober,
	session SessionReader,
	validator *validation.Validator,
	emitter events.Emitter,
	log logger.ILogger,
	settings TranscriptionSettings,
) ITranscriptionService {
	if settings.HistoryLimit <= 0 {
		settings.HistoryLimit = 50
	}
	if settings.MaxUploadBytes <= 0 {
		settings.MaxUploadBytes = 100 * 1024 * 1024
	}

	s := &transcriptionService{
		api:       api,
		repo:      repo,
		prober:    prober,
		session:   session,
		validator: validator,
		emitter:   emitter,
		logger:    log,
		mapper:    mapper.NewTranscriptionMapper(),
		settings:  settings,
		now:       time.Now,
		afterFunc: time.AfterFunc,
		history:   []entity.TranscriptionResult{},
	}

	history, err := repo.Load(ctx)
	if err != nil {
		log.Warn(transcriptionModule, "Failed to load transcription history", map[string]interface{}{"error": err.Error()})
	} else if history != nil {
		s.history = history
	}
	return s
}

func (s *transcriptionService) TranscribeAudio(ctx context.Context, req *dto.TranscriptionRequest) (*entity.TranscriptionResult, error) {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		return nil, validation.New("file", ErrTranscriptionInProgress.Error())
	}
	s.isProcessing = true
	s.lastError = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
		s.emitState(ctx)
	}()

	s.SetProgress(ctx, entity.TranscriptionProgress{Stage: entity.StageUploading, Progress: 0, Message: constant.ProgressMessagePreparing})

	format, err := s.validateRequest(req)
	if err != nil {
		s.fail(ctx, err.Error())
		return nil, err
	}

	s.analyze(ctx, req.File, format)

	s.SetProgress(ctx, entity.TranscriptionProgress{Stage: entity.StageUploading, Progress: 25, Message: constant.ProgressMessageUploading})

	body, err := req.File.Open()
	if err != nil {
		s.fail(ctx, "Failed to read audio file")
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer body.Close()

	s.SetProgress(ctx, entity.TranscriptionProgress{Stage: entity.StageProcessing, Progress: 50, Message: constant.ProgressMessageProcessing})

	transcribe := s.api.Transcribe
	if req.InRemoteSession {
		transcribe = s.api.TranscribeInSession
	}
	resp, err := transcribe(ctx, backend.TranscribeRequest{
		Filename:          req.File.Filename,
		ContentType:       req.File.ContentType,
		Body:              body,
		Language:          req.Language,
		Task:              req.Task,
		EnableDiarization: req.EnableDiarization,
		SessionId:         req.SessionId,
		BearerToken:       s.session.Token(),
	})
	if err != nil {
		apiErr := backend.AsAPIError(err, "Transcription failed")
		s.logger.Error(transcriptionModule, "Transcription request failed", map[string]interface{}{
			"filename": req.File.Filename,
			"error":    err.Error(),
		})
		s.fail(ctx, apiErr.Detail)
		return nil, apiErr
	}

	s.SetProgress(ctx, entity.TranscriptionProgress{Stage: entity.StageAnalyzing, Progress: 75, Message: constant.ProgressMessageAnalyzing})

	result := s.mapper.ToEntity(resp, s.now(), req.SessionId)

	s.persistMu.Lock()
	s.mu.Lock()
	s.current = result
	history := append([]entity.TranscriptionResult{*result}, s.history...)
	if len(history) > s.settings.HistoryLimit {
		history = history[:s.settings.HistoryLimit]
	}
	s.history = history
	snapshot := slices.Clone(history)
	s.mu.Unlock()

	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.logger.Error(transcriptionModule, "Failed to persist transcription history", map[string]interface{}{"error": err.Error()})
	}
	s.persistMu.Unlock()

	s.SetProgress(ctx, entity.TranscriptionProgress{Stage: entity.StageComplete, Progress: 100, Message: constant.ProgressMessageComplete})
	s.scheduleProgressClear(ctx)

	s.logger.Info(transcriptionModule, "Transcription completed", map[string]interface{}{
		"id":       result.Id,
		"filename": result.Filename,
		"duration": result.Duration,
		"segments": len(result.Segments),
	})

	out := *result
	return &out, nil
}

// validateRequest returns the audio format (the MIME subtype) of an acceptable upload.
func (s *transcriptionService) validateRequest(req *dto.TranscriptionRequest) (string, error) {
	if req == nil || req.File.Open == nil || req.File.Filename == "" {
		return "", validation.New("file", "Valid audio file is required")
	}

	mediaType, _, err := mime.ParseMediaType(req.File.ContentType)
	if err != nil || !slices.Contains(constant.AllowedAudioTypes, mediaType) {
		return "", validation.New("file", "File must be a valid audio format (MP3, WAV, FLAC, M4A, AAC, OGG, WebM)")
	}

	if req.File.Size > s.settings.MaxUploadBytes {
		return "", validation.New("file", fmt.Sprintf("File size must be less than %dMB", s.settings.MaxUploadBytes/(1024*1024)))
	}

	if err := s.validator.Struct(req); err != nil {
		return "", err
	}

	_, format, _ := strings.Cut(mediaType, "/")
	return format, nil
}

// analyze records what can be learned about the file before upload. A probe
// failure leaves duration at zero.
func (s *transcriptionService) analyze(ctx context.Context, file dto.AudioFile, format string) {
	analysis := entity.AudioAnalysis{
		Format:   format,
		Quality:  classifyQuality(format, file.Size),
		FileSize: file.Size,
	}

	if s.prober != nil {
		md, err := s.prober.Probe(ctx, audio.Opener(file.Open))
		if err != nil {
			s.logger.Warn(transcriptionModule, "Audio analysis failed", map[string]interface{}{
				"filename": file.Filename,
				"error":    err.Error(),
			})
		} else {
			analysis.Duration = md.Duration
		}
	}

	s.mu.Lock()
	s.analysis = analysis
	s.mu.Unlock()
}

func classifyQuality(format string, size int64) string {
	switch {
	case format == "wav" || format == "flac":
		return constant.AudioQualityHigh
	case size > 5*1024*1024:
		return constant.AudioQualityMedium
	default:
		return constant.AudioQualityStandard
	}
}

func (s *transcriptionService) fail(ctx context.Context, message string) {
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
	s.SetProgress(ctx, entity.TranscriptionProgress{Stage: entity.StageError, Progress: 0, Message: message})
}

func (s *transcriptionService) scheduleProgressClear(ctx context.Context) {
	if s.settings.ProgressClearDelay <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearTimer != nil {
		s.clearTimer.Stop()
	}
	s.clearTimer = s.afterFunc(s.settings.ProgressClearDelay, func() {
		s.mu.Lock()
		busy := s.isProcessing
		s.mu.Unlock()
		if !busy {
			s.ClearProgress(context.WithoutCancel(ctx))
		}
	})
}

func (s *transcriptionService) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isProcessing
}

func (s *transcriptionService) SetProgress(ctx context.Context, p entity.TranscriptionProgress) {
	s.mu.Lock()
	progress := p
	s.progress = &progress
	s.mu.Unlock()

	if err := s.emitter.Emit(ctx, events.New(events.TypeTranscriptionProgress, map[string]interface{}{"progress": p})); err != nil {
		s.logger.Warn(transcriptionModule, "Failed to emit progress", map[string]interface{}{"error": err.Error()})
	}
}

func (s *transcriptionService) ClearProgress(ctx context.Context) {
	s.mu.Lock()
	s.progress = nil
	s.mu.Unlock()
	s.emitState(ctx)
}

func (s *transcriptionService) GetTranscriptionByID(id int64) (*entity.TranscriptionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		if s.history[i].Id == id {
			out := s.history[i]
			return &out, nil
		}
	}
	return nil, ErrTranscriptionNotFound
}

func (s *transcriptionService) DeleteTranscription(ctx context.Context, id int64) error {
	s.persistMu.Lock()
	s.mu.Lock()
	idx := slices.IndexFunc(s.history, func(r entity.TranscriptionResult) bool { return r.Id == id })
	if idx < 0 {
		s.mu.Unlock()
		s.persistMu.Unlock()
		return ErrTranscriptionNotFound
	}
	s.history = slices.Delete(slices.Clone(s.history), idx, idx+1)
	if s.current != nil && s.current.Id == id {
		s.current = nil
	}
	snapshot := slices.Clone(s.history)
	s.mu.Unlock()

	err := s.repo.Save(ctx, snapshot)
	s.persistMu.Unlock()
	if err != nil {
		return fmt.Errorf("save transcription history: %w", err)
	}
	s.emitState(ctx)
	return nil
}

func (s *transcriptionService) ClearHistory(ctx context.Context) error {
	s.persistMu.Lock()
	s.mu.Lock()
	s.history = []entity.TranscriptionResult{}
	s.current = nil
	s.mu.Unlock()

	err := s.repo.Save(ctx, []entity.TranscriptionResult{})
	s.persistMu.Unlock()
	if err != nil {
		return fmt.Errorf("save transcription history: %w", err)
	}
	s.emitState(ctx)
	return nil
}

func (s *transcriptionService) History() []entity.TranscriptionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

func (s *transcriptionService) Current() *entity.TranscriptionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

// CurrentStats summarises the current result, or nil when there is none.
func (s *transcriptionService) CurrentStats() *entity.TranscriptionStats {
	current := s.Current()
	if current == nil {
		return nil
	}

	speakers := make(map[string]struct{})
	emotions := make(map[string]int)
	for _, seg := range current.Segments {
		speakers[seg.Speaker] = struct{}{}
		if seg.Emotion != "" {
			emotions[seg.Emotion]++
		}
	}

	return &entity.TranscriptionStats{
		TotalSegments:  len(current.Segments),
		UniqueSpeakers: len(speakers),
		Emotions:       emotions,
		Duration:       current.Duration,
		WordCount:      len(strings.Fields(current.Text)),
	}
}

func (s *transcriptionService) ExportAsText(result *entity.TranscriptionResult) string {
	return ExportAsText(result)
}

func (s *transcriptionService) ExportJSON(result *entity.TranscriptionResult) (string, error) {
	if result == nil {
		return "", ErrTranscriptionNotFound
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcription: %w", err)
	}
	return string(data), nil
}

func (s *transcriptionService) SetError(ctx context.Context, message string) {
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
	s.emitState(ctx)
}

func (s *transcriptionService) State() dto.TranscriptionStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := dto.TranscriptionStateResponse{
		IsProcessing:  s.isProcessing,
		AudioAnalysis: s.analysis,
		Error:         s.lastError,
	}
	if s.current != nil {
		c := *s.current
		state.Current = &c
	}
	if s.progress != nil {
		p := *s.progress
		state.Progress = &p
	}
	return state
}

// Close stops the pending progress clear, if any.
func (s *transcriptionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
}

func (s *transcriptionService) emitState(ctx context.Context) {
	if err := s.emitter.Emit(ctx, events.New(events.TypeTranscriptionChanged, map[string]interface{}{"state": s.State()})); err != nil {
		s.logger.Warn(transcriptionModule, "Failed to emit state change", map[string]interface{}{"error": err.Error()})
	}
}
