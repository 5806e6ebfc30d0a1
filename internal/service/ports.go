package service

import (
	"context"

	"whisper-client/internal/entity"
	"whisper-client/pkg/backend"
)

type AuthAPI interface {
	SignUp(ctx context.Context, payload backend.SignUpPayload) (*backend.User, error)
	SignIn(ctx context.Context, payload backend.SignInPayload) (*backend.User, error)
	Logout(ctx context.Context) error
	Validate(ctx context.Context) (*backend.User, error)
}

type TranscriptionAPI interface {
	Transcribe(ctx context.Context, req backend.TranscribeRequest) (*backend.TranscribeResponse, error)
	TranscribeInSession(ctx context.Context, req backend.TranscribeRequest) (*backend.TranscribeResponse, error)
}

type RemoteSessionAPI interface {
	ListSessions(ctx context.Context, skip, limit int) ([]backend.RemoteSession, error)
	CreateSession(ctx context.Context, payload backend.CreateSessionPayload) (*backend.RemoteSession, error)
	GetSession(ctx context.Context, id string) (*backend.RemoteSession, error)
	UpdateSession(ctx context.Context, id string, payload backend.UpdateSessionPayload) (*backend.RemoteSession, error)
	DeleteSession(ctx context.Context, id string) error
}

// SessionReader is the read side of the auth container other containers consult.
type SessionReader interface {
	IsAuthenticated() bool
	Token() string
	CurrentUser() *entity.User
}

// ProgressSink lets the chat channel push server-side progress into the
// transcription container.
type ProgressSink interface {
	IsProcessing() bool
	SetProgress(ctx context.Context, p entity.TranscriptionProgress)
}
