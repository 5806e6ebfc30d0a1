package integration

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"whisper-client/internal/bootstrap"
	"whisper-client/internal/config"
	"whisper-client/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// fakeBackend answers the handful of backend endpoints the client calls.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret-pass" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"username":"` + body["username"] + `","email":"aida@example.com"}`))
	})
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/v1/transcribe-demo", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"file missing"}`))
			return
		}
		_, _ = io.Copy(io.Discard, file)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":              101,
			"text":            "salem alem",
			"language":        r.FormValue("language"),
			"duration":        3.0,
			"filename":        header.Filename,
			"speakers":        []string{"SPEAKER_00"},
			"overall_emotion": "neutral",
			"segments": []map[string]interface{}{
				{"start": 0, "end": 3, "speaker": "SPEAKER_00", "text": "salem alem", "emotion": "neutral"},
			},
		})
	})

	mux.HandleFunc("POST /api/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"chat_id":"remote-1","title":"` + body["title"] + `"}`))
	})
	mux.HandleFunc("GET /api/v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "remote-1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Session not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"remote-1","title":"Interview"}`))
	})
	mux.HandleFunc("POST /api/v1/sessions/{id}/transcribe", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"file missing"}`))
			return
		}
		_, _ = io.Copy(io.Discard, file)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       202,
			"text":     "session audio",
			"language": r.FormValue("language"),
			"duration": 2.0,
			"filename": header.Filename,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, backendURL string) *fiber.App {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "client.log"),
			StateLogFilePath:   filepath.Join(dir, "state.log"),
			CorsAllowedOrigins: "http://localhost:5173",
		},
		Backend: config.BackendConfig{
			APIURL:         backendURL + "/api/v1",
			RequestTimeout: 5 * time.Second,
		},
		Storage:       config.StorageConfig{Driver: "memory"},
		Events:        config.EventsConfig{Topic: "state.changed"},
		Session:       config.SessionConfig{TTL: time.Hour},
		Transcription: config.TranscriptionConfig{
			MaxUploadBytes: 10 * 1024 * 1024,
			HistoryLimit:   50,
			FFprobePath:    "ffprobe-not-installed",
		},
		Channel: config.ChannelConfig{MaxAttempts: 5, BaseDelay: time.Second},
	}

	ctx, cancel := context.WithCancel(context.Background())
	container, err := bootstrap.NewContainer(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = container.Close()
	})

	return server.New(cfg, container).GetApp()
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func wavBytes(seconds int) []byte {
	const rate = 16000
	dataLen := uint32(seconds * rate * 2)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	return uploadRequestTo(t, "/api/transcriptions", "file", filename, contentType, data)
}

func uploadRequestTo(t *testing.T, path, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("language", "kk"))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestClientFlow(t *testing.T) {
	backend := fakeBackend(t)
	app := newTestApp(t, backend.URL)

	t.Run("sessions require sign in", func(t *testing.T) {
		code, env := doJSON(t, app, http.MethodGet, "/api/sessions", nil)
		assert.Equal(t, fiber.StatusUnauthorized, code)
		assert.Equal(t, "Authentication required", env.Message)
	})

	t.Run("sign in rejected by backend", func(t *testing.T) {
		code, env := doJSON(t, app, http.MethodPost, "/api/auth/sign-in", map[string]string{
			"username": "aida",
			"password": "wrong-pass",
		})
		assert.Equal(t, fiber.StatusUnauthorized, code)
		assert.Equal(t, "Invalid credentials", env.Message)
	})

	t.Run("sign in", func(t *testing.T) {
		code, env := doJSON(t, app, http.MethodPost, "/api/auth/sign-in", map[string]string{
			"username": "aida",
			"password": "secret-pass",
		})
		require.Equal(t, fiber.StatusOK, code)

		var state struct {
			IsAuthenticated bool `json:"is_authenticated"`
			User            struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &state))
		assert.True(t, state.IsAuthenticated)
		assert.Equal(t, "aida", state.User.Username)
	})

	var sessionId string
	t.Run("create session", func(t *testing.T) {
		code, env := doJSON(t, app, http.MethodPost, "/api/sessions", map[string]interface{}{
			"name":     "Standup",
			"language": "kk",
		})
		require.Equal(t, fiber.StatusCreated, code)

		var session struct {
			Id   string `json:"id"`
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &session))
		assert.Equal(t, "Standup", session.Name)
		sessionId = session.Id
	})

	t.Run("reject unsupported upload", func(t *testing.T) {
		code, _ := send(t, app, uploadRequest(t, "notes.txt", "text/plain", []byte("hello")))
		assert.Equal(t, fiber.StatusBadRequest, code)
	})

	var transcriptionId int64
	t.Run("transcribe", func(t *testing.T) {
		code, env := send(t, app, uploadRequest(t, "standup.wav", "audio/wav", wavBytes(3)))
		require.Equal(t, fiber.StatusOK, code, env.Message)

		var result struct {
			Id       int64  `json:"id"`
			Text     string `json:"text"`
			Language string `json:"language"`
			Filename string `json:"filename"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Equal(t, int64(101), result.Id)
		assert.Equal(t, "salem alem", result.Text)
		assert.Equal(t, "kk", result.Language)
		assert.Equal(t, "standup.wav", result.Filename)
		transcriptionId = result.Id
	})

	t.Run("attach and stats", func(t *testing.T) {
		code, _ := doJSON(t, app, http.MethodPost, "/api/sessions/current/transcriptions/101", nil)
		require.Equal(t, fiber.StatusOK, code)

		code, env := doJSON(t, app, http.MethodGet, "/api/sessions/"+sessionId+"/stats", nil)
		require.Equal(t, fiber.StatusOK, code)

		var stats struct {
			TotalTranscriptions int            `json:"totalTranscriptions"`
			TotalDuration       int64          `json:"totalDuration"`
			UniqueSpeakers      int            `json:"uniqueSpeakers"`
			Emotions            map[string]int `json:"emotions"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &stats))
		assert.Equal(t, 1, stats.TotalTranscriptions)
		assert.Equal(t, int64(3), stats.TotalDuration)
		assert.Equal(t, 1, stats.UniqueSpeakers)
		assert.Equal(t, 1, stats.Emotions["neutral"])
	})

	t.Run("export transcription as text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/transcriptions/101/export", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.True(t, strings.Contains(string(body), "salem alem"))
		assert.Equal(t, int64(101), transcriptionId)
	})

	t.Run("unknown transcription", func(t *testing.T) {
		code, _ := doJSON(t, app, http.MethodGet, "/api/transcriptions/999", nil)
		assert.Equal(t, fiber.StatusNotFound, code)
	})

	t.Run("remote session transcription", func(t *testing.T) {
		code, env := doJSON(t, app, http.MethodPost, "/api/remote-sessions", map[string]string{"title": "Interview"})
		require.Equal(t, fiber.StatusCreated, code, env.Message)
		var created struct {
			Id     string `json:"id"`
			ChatId string `json:"chat_id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &created))
		assert.Equal(t, "remote-1", created.Id)
		assert.Equal(t, "remote-1", created.ChatId)

		code, env = send(t, app, uploadRequestTo(t, "/api/remote-sessions/remote-1/transcribe", "audio", "clip.wav", "audio/wav", wavBytes(2)))
		require.Equal(t, fiber.StatusOK, code, env.Message)
		var result struct {
			Id        int64  `json:"id"`
			Text      string `json:"text"`
			SessionId string `json:"sessionId"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Equal(t, int64(202), result.Id)
		assert.Equal(t, "session audio", result.Text)
		assert.Equal(t, "remote-1", result.SessionId)

		code, env = send(t, app, uploadRequestTo(t, "/api/remote-sessions/remote-404/transcribe", "file", "clip.wav", "audio/wav", wavBytes(2)))
		assert.Equal(t, fiber.StatusNotFound, code)
		assert.Equal(t, "Session not found. Please create the session first", env.Message)
	})

	t.Run("active session survives later requests", func(t *testing.T) {
		ids := make([]string, 0, 2)
		for _, name := range []string{"Alpha", "Beta"} {
			code, env := doJSON(t, app, http.MethodPost, "/api/sessions", map[string]interface{}{"name": name})
			require.Equal(t, fiber.StatusCreated, code)
			var session struct {
				Id string `json:"id"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &session))
			ids = append(ids, session.Id)
		}
		alpha, beta := ids[0], ids[1]

		code, _ := doJSON(t, app, http.MethodPost, "/api/sessions/"+alpha+"/activate", nil)
		require.Equal(t, fiber.StatusOK, code)

		for i := 0; i < 20; i++ {
			code, _ := doJSON(t, app, http.MethodGet, "/api/sessions/"+beta+"/stats", nil)
			require.Equal(t, fiber.StatusOK, code)
		}

		code, env := doJSON(t, app, http.MethodGet, "/api/sessions", nil)
		require.Equal(t, fiber.StatusOK, code)
		var state struct {
			CurrentSession struct {
				Id   string `json:"id"`
				Name string `json:"name"`
			} `json:"current_session"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &state))
		assert.Equal(t, alpha, state.CurrentSession.Id)
		assert.Equal(t, "Alpha", state.CurrentSession.Name)
	})

	t.Run("logout closes sessions", func(t *testing.T) {
		code, _ := doJSON(t, app, http.MethodPost, "/api/auth/logout", nil)
		require.Equal(t, fiber.StatusOK, code)

		code, _ = doJSON(t, app, http.MethodGet, "/api/sessions", nil)
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})
}
