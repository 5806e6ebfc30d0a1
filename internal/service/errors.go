package service

import "errors"

var (
	ErrSessionNotFound         = errors.New("Session not found")
	ErrNoActiveSession         = errors.New("No active session")
	ErrInvalidSessionData      = errors.New("Invalid session data format")
	ErrTranscriptionNotFound   = errors.New("Transcription not found")
	ErrTranscriptionInProgress = errors.New("A transcription is already in progress")
	ErrNotAuthenticated        = errors.New("Not authenticated")
	ErrAlreadyRecording        = errors.New("Recording already in progress")
	ErrNotRecording            = errors.New("Not recording")
	ErrServiceClosed           = errors.New("Chat sessions are shut down")
)
