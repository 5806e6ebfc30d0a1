package service

import (
	"context"
	"regexp"
	"sync"
	"time"
	"unicode/utf8"

	"whisper-client/internal/dto"
	"whisper-client/internal/entity"
	"whisper-client/internal/mapper"
	"whisper-client/internal/pkg/logger"
	"whisper-client/internal/pkg/validation"
	"whisper-client/internal/repository/contract"
	"whisper-client/pkg/backend"
	"whisper-client/pkg/events"

	"github.com/google/uuid"
)

const authModule = "AuthService"

type IAuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) error
	SignIn(ctx context.Context, req *dto.SignInRequest) error
	Logout(ctx context.Context)
	Validate(ctx context.Context) (*entity.User, error)
	IsSessionValid() bool
	IsAuthenticated() bool
	Token() string
	CurrentUser() *entity.User
	State() dto.AuthStateResponse
	SetError(ctx context.Context, message string)
	ClearError(ctx context.Context)
	PasswordStrength(password string) dto.PasswordStrength
}

type authService struct {
	api        AuthAPI
	repo       contract.AuthSessionRepository
	validator  *validation.Validator
	emitter    events.Emitter
	logger     logger.ILogger
	userMapper *mapper.UserMapper
	ttl        time.Duration
	now        func() time.Time
	newToken   func() string

	mu        sync.RWMutex
	session   *entity.AuthSession
	isLoading bool
	lastError string
}

// NewAuthService restores the persisted session. A stored session that has
// already expired is logged out on the spot.
func NewAuthService(
	ctx context.Context,
	api AuthAPI,
	repo contract.AuthSessionRepository,
	validator *validation.Validator,
	emitter events.Emitter,
	log logger.ILogger,
	ttl time.Duration,
) IAuthService {
	s := &authService{
		api:        api,
		repo:       repo,
		validator:  validator,
		emitter:    emitter,
		logger:     log,
		userMapper: mapper.NewUserMapper(),
		ttl:        ttl,
		now:        time.Now,
		newToken:   uuid.NewString,
	}
	s.hydrate(ctx)
	return s
}

func (s *authService) hydrate(ctx context.Context) {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn(authModule, "Failed to load stored session", map[string]interface{}{"error": err.Error()})
		return
	}
	if stored == nil {
		return
	}
	if !stored.IsValidAt(s.now()) {
		s.logger.Info(authModule, "Stored session expired", map[string]interface{}{"expired_at": stored.ExpiresAt})
		s.Logout(ctx)
		return
	}

	s.mu.Lock()
	s.session = stored
	s.mu.Unlock()
}

func (s *authService) SignUp(ctx context.Context, req *dto.SignUpRequest) error {
	s.begin()
	defer s.end(ctx)

	if err := s.validator.Struct(req); err != nil {
		s.setError(err.Error())
		return err
	}

	user, err := s.api.SignUp(ctx, backend.SignUpPayload{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apiErr := backend.AsAPIError(err, "Sign up failed")
		s.logger.Warn(authModule, "Sign up rejected", map[string]interface{}{"username": req.Username, "error": err.Error()})
		s.setError(apiErr.Detail)
		return apiErr
	}

	s.startSession(ctx, user)
	return nil
}

func (s *authService) SignIn(ctx context.Context, req *dto.SignInRequest) error {
	s.begin()
	defer s.end(ctx)

	if err := s.validator.Struct(req); err != nil {
		s.setError(err.Error())
		return err
	}

	user, err := s.api.SignIn(ctx, backend.SignInPayload{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apiErr := backend.AsAPIError(err, "Sign in failed")
		s.logger.Warn(authModule, "Sign in rejected", map[string]interface{}{"username": req.Username, "error": err.Error()})
		s.setError(apiErr.Detail)
		return apiErr
	}

	s.startSession(ctx, user)
	return nil
}

func (s *authService) startSession(ctx context.Context, user *backend.User) {
	session := &entity.AuthSession{
		User:      s.userMapper.ToEntity(user),
		Token:     s.newToken(),
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	if err := s.repo.Save(ctx, session); err != nil {
		s.logger.Error(authModule, "Failed to persist session", map[string]interface{}{"error": err.Error()})
	}
	s.logger.Info(authModule, "Signed in", map[string]interface{}{"user_id": session.User.Id, "expires_at": session.ExpiresAt})
}

// Logout always succeeds locally; the remote call is best effort.
func (s *authService) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn(authModule, "Error calling logout API", map[string]interface{}{"error": err.Error()})
	}

	s.mu.Lock()
	s.session = nil
	s.lastError = ""
	s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Error(authModule, "Failed to clear stored session", map[string]interface{}{"error": err.Error()})
	}
	s.emit(ctx)
}

// Validate re-reads the signed in user from the backend. A 401 ends the session.
func (s *authService) Validate(ctx context.Context) (*entity.User, error) {
	if !s.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	user, err := s.api.Validate(ctx)
	if err != nil {
		if backend.IsUnauthorized(err) {
			s.Logout(ctx)
			return nil, backend.AsAPIError(err, "Invalid or expired session")
		}
		return nil, backend.AsAPIError(err, "Authentication validation failed")
	}

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	updated := *s.session
	updated.User = s.userMapper.ToEntity(user)
	s.session = &updated
	s.mu.Unlock()

	if err := s.repo.Save(ctx, &updated); err != nil {
		s.logger.Error(authModule, "Failed to persist session", map[string]interface{}{"error": err.Error()})
	}
	s.emit(ctx)
	return updated.User, nil
}

// IsSessionValid is true strictly before the expiry instant.
func (s *authService) IsSessionValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil && s.now().Before(s.session.ExpiresAt)
}

func (s *authService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsValidAt(s.now())
}

func (s *authService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

func (s *authService) CurrentUser() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.User == nil {
		return nil
	}
	u := *s.session.User
	return &u
}

func (s *authService) State() dto.AuthStateResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := dto.AuthStateResponse{IsLoading: s.isLoading, Error: s.lastError}
	if s.session != nil && s.session.User != nil {
		state.IsAuthenticated = s.session.IsValidAt(s.now())
		u := *s.session.User
		state.User = &u
		state.SessionToken = s.session.Token
		expiry := s.session.ExpiresAt
		state.SessionExpiry = &expiry
	}
	return state
}

func (s *authService) SetError(ctx context.Context, message string) {
	s.setError(message)
	s.emit(ctx)
}

func (s *authService) ClearError(ctx context.Context) {
	s.setError("")
	s.emit(ctx)
}

var (
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	symbolPattern = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func (s *authService) PasswordStrength(password string) dto.PasswordStrength {
	return passwordStrength(password)
}

func passwordStrength(password string) dto.PasswordStrength {
	if password == "" {
		return dto.PasswordStrength{}
	}

	score := 0
	if utf8.RuneCountInString(password) > 6 {
		score++
	}
	if upperPattern.MatchString(password) {
		score++
	}
	if digitPattern.MatchString(password) {
		score++
	}
	if symbolPattern.MatchString(password) {
		score++
	}

	labels := []string{"", "Weak", "Fair", "Good", "Strong"}
	return dto.PasswordStrength{Score: score, Label: labels[score]}
}

func (s *authService) begin() {
	s.mu.Lock()
	s.isLoading = true
	s.lastError = ""
	s.mu.Unlock()
}

func (s *authService) end(ctx context.Context) {
	s.mu.Lock()
	s.isLoading = false
	s.mu.Unlock()
	s.emit(ctx)
}

func (s *authService) setError(message string) {
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
}

func (s *authService) emit(ctx context.Context) {
	state := s.State()
	// The UI feed must never see the token.
	state.SessionToken = ""
	if err := s.emitter.Emit(ctx, events.New(events.TypeAuthChanged, map[string]interface{}{"state": state})); err != nil {
		s.logger.Warn(authModule, "Failed to emit state change", map[string]interface{}{"error": err.Error()})
	}
}
