package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"whisper-client/internal/dto"
	"whisper-client/internal/entity"
	"whisper-client/internal/repository/contract"
	"whisper-client/pkg/backend"
)

type fakeAuthAPI struct {
	mu          sync.Mutex
	calls       int
	logoutCalls int
	user        *backend.User
	err         error
	logoutErr   error
	validateErr error
}

func (f *fakeAuthAPI) SignUp(_ context.Context, p backend.SignUpPayload) (*backend.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &backend.User{Id: 1, Username: p.Username, Email: p.Email}, nil
}

func (f *fakeAuthAPI) SignIn(_ context.Context, p backend.SignInPayload) (*backend.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil {
		return f.user, nil
	}
	return &backend.User{Id: 1, Username: p.Username, Email: "alice@example.com"}, nil
}

func (f *fakeAuthAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuthAPI) Validate(context.Context) (*backend.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return &backend.User{Id: 1, Username: "alice-renamed", Email: "alice@example.com"}, nil
}

func (f *fakeAuthAPI) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// staticSession is a SessionReader with fixed answers.
type staticSession struct {
	authenticated bool
	token         string
	user          *entity.User
}

func (s staticSession) IsAuthenticated() bool     { return s.authenticated }
func (s staticSession) Token() string             { return s.token }
func (s staticSession) CurrentUser() *entity.User { return s.user }

type fakeTranscriptionAPI struct {
	mu       sync.Mutex
	calls    int
	lastReq  backend.TranscribeRequest
	bodySize int
	resp     *backend.TranscribeResponse
	err      error
	started  chan struct{}
	release  chan struct{}

	sessionCalls int
}

func (f *fakeTranscriptionAPI) Transcribe(ctx context.Context, req backend.TranscribeRequest) (*backend.TranscribeResponse, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	f.bodySize = len(body)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &backend.TranscribeResponse{Id: int64(f.calls), Text: "hello", Filename: req.Filename}, nil
}

func (f *fakeTranscriptionAPI) TranscribeInSession(ctx context.Context, req backend.TranscribeRequest) (*backend.TranscribeResponse, error) {
	f.mu.Lock()
	f.sessionCalls++
	f.mu.Unlock()
	return f.Transcribe(ctx, req)
}

func (f *fakeTranscriptionAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// buildWAV returns a 16 kHz mono 16-bit PCM WAV holding the given seconds of silence.
func buildWAV(seconds int) []byte {
	const byteRate = 16000 * 2
	dataSize := uint32(seconds * byteRate)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))        // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))        // channels
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16000))    // sample rate
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate)) // byte rate
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))        // block align
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))       // bits per sample
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func audioFile(name, contentType string, data []byte) dto.AudioFile {
	return dto.AudioFile{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// slowStore delays each write by a varying amount so overlapping saves
// complete out of order unless the caller serializes them.
type slowStore struct {
	contract.KeyValueStore
	writes atomic.Int64
}

func (s *slowStore) Set(ctx context.Context, key string, value []byte) error {
	n := s.writes.Add(1)
	time.Sleep(time.Duration(5-n%5) * time.Millisecond)
	return s.KeyValueStore.Set(ctx, key, value)
}
