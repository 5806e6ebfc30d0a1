package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SignInKeepsSessionCookie(t *testing.T) {
	var validateCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/signin":
			var p SignInPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Equal(t, "alice", p.Username)
			http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "c00k1e", Path: "/"})
			_ = json.NewEncoder(w).Encode(User{Id: 1, Username: "alice", Email: "alice@example.com"})
		case "/api/v1/auth/validate":
			if c, err := r.Cookie(SessionCookieName); err == nil {
				validateCookie = c.Value
			}
			_ = json.NewEncoder(w).Encode(User{Id: 1, Username: "alice"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/v1/", 5*time.Second)

	user, err := c.SignIn(context.Background(), SignInPayload{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.Id)

	_, err = c.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c00k1e", validateCookie)
}

func TestClient_ErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"detail surfaced verbatim", http.StatusBadRequest, `{"detail":"Username already registered"}`, "Username already registered"},
		{"non json body", http.StatusBadGateway, `<html>bad gateway</html>`, ""},
		{"empty detail", http.StatusUnauthorized, `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).SignUp(context.Background(), SignUpPayload{})
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
		})
	}
}

func TestDetailOr(t *testing.T) {
	assert.Equal(t, "nope", DetailOr(&APIError{StatusCode: 400, Detail: "nope"}, "Sign in failed"))
	assert.Equal(t, "Sign in failed", DetailOr(&APIError{StatusCode: 500}, "Sign in failed"))
	assert.Equal(t, "Sign in failed", DetailOr(io.EOF, "Sign in failed"))
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
}

func TestClient_TranscribeMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe-demo", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "transcribe", r.FormValue("task"))
		assert.Equal(t, "true", r.FormValue("enable_diarization"))
		assert.Equal(t, "kk", r.FormValue("language"))
		assert.Equal(t, "s-1", r.FormValue("session_id"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "clip.wav", hdr.Filename)
		assert.Equal(t, "audio/wav", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "RIFF....", string(data))

		_ = json.NewEncoder(w).Encode(TranscribeResponse{Id: 42, Text: "hello", Duration: 10})
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, time.Second).Transcribe(context.Background(), TranscribeRequest{
		Filename:          "clip.wav",
		ContentType:       "audio/wav",
		Body:              strings.NewReader("RIFF...."),
		Language:          "kk",
		Task:              "transcribe",
		EnableDiarization: true,
		SessionId:         "s-1",
		BearerToken:       "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.Id)
	assert.Equal(t, "hello", out.Text)
}

func TestClient_SessionCRUD(t *testing.T) {
	var updated map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/sessions":
			assert.Equal(t, "10", r.URL.Query().Get("skip"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = io.WriteString(w, `[{"id":"a","title":"One"},{"chat_id":"b","title":"Two"}]`)
		case r.Method == http.MethodPost && r.URL.Path == "/sessions":
			var p CreateSessionPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Equal(t, "Interview", p.Title)
			_, _ = io.WriteString(w, `{"chat_id":"c-9","title":"Interview"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/sessions/c-9":
			_, _ = io.WriteString(w, `{"id":"c-9","title":"Interview"}`)
		case r.Method == http.MethodPut && r.URL.Path == "/sessions/c-9":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
			_, _ = io.WriteString(w, `{"id":"c-9","title":"Renamed"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/sessions/c-9":
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/sessions/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Session not found"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL, time.Second)

	list, err := c.ListSessions(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Id)
	assert.Equal(t, "b", list[1].Id, "chat_id fills a missing id")

	created, err := c.CreateSession(ctx, CreateSessionPayload{Title: "Interview"})
	require.NoError(t, err)
	assert.Equal(t, "c-9", created.Id)
	assert.Equal(t, "c-9", created.ChatId)

	got, err := c.GetSession(ctx, "c-9")
	require.NoError(t, err)
	assert.Equal(t, "Interview", got.Title)

	title := "Renamed"
	renamed, err := c.UpdateSession(ctx, "c-9", UpdateSessionPayload{Title: &title, UpdatedAt: time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)
	assert.Equal(t, "Renamed", updated["title"])
	assert.Equal(t, "2026-10-16T09:30:00Z", updated["updated_at"])
	assert.NotContains(t, updated, "language")

	require.NoError(t, c.DeleteSession(ctx, "c-9"))

	_, err = c.GetSession(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Session not found", apiErr.Detail)
}

func TestClient_CreateSessionWithoutId(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"title":"Nameless"}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).CreateSession(context.Background(), CreateSessionPayload{Title: "Nameless"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Session created but no ID returned", apiErr.Detail)
}

func TestClient_TranscribeInSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/s%201/transcribe", r.URL.EscapedPath())
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "kk", r.FormValue("language"))
		assert.Equal(t, "false", r.FormValue("enable_diarization"))
		_ = json.NewEncoder(w).Encode(TranscribeResponse{Id: 5, Text: "salem"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	out, err := c.TranscribeInSession(context.Background(), TranscribeRequest{
		Filename:    "clip.wav",
		ContentType: "audio/wav",
		Body:        strings.NewReader("RIFF...."),
		Language:    "kk",
		Task:        "transcribe",
		SessionId:   "s 1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Id)

	_, err = c.TranscribeInSession(context.Background(), TranscribeRequest{Body: strings.NewReader("")})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
