package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SessionCookieName is the httpOnly cookie the backend issues on sign-in.
const SessionCookieName = "audio_transcription_session"

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil) // only fails on a non-nil options argument
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

func (c *Client) SignUp(ctx context.Context, payload SignUpPayload) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SignIn(ctx context.Context, payload SignInPayload) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signin", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Validate asks the backend who owns the current session cookie.
func (c *Client) Validate(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/validate", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Transcribe(ctx context.Context, in TranscribeRequest) (*TranscribeResponse, error) {
	return c.transcribe(ctx, "/transcribe-demo", in)
}

// TranscribeInSession uploads audio into the backend session named by in.SessionId.
func (c *Client) TranscribeInSession(ctx context.Context, in TranscribeRequest) (*TranscribeResponse, error) {
	if in.SessionId == "" {
		return nil, &APIError{StatusCode: http.StatusBadRequest, Detail: "Invalid session ID provided"}
	}
	return c.transcribe(ctx, sessionPath(in.SessionId)+"/transcribe", in)
}

func (c *Client) transcribe(ctx context.Context, path string, in TranscribeRequest) (*TranscribeResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeTranscribeForm(mw, in))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if in.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+in.BearerToken)
	}

	var out TranscribeResponse
	if err := c.do(req, &out); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSessions(ctx context.Context, skip, limit int) ([]RemoteSession, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var sessions []RemoteSession
	if err := c.doJSON(ctx, http.MethodGet, "/sessions?"+q.Encode(), nil, &sessions); err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].normalize()
	}
	if sessions == nil {
		sessions = []RemoteSession{}
	}
	return sessions, nil
}

func (c *Client) CreateSession(ctx context.Context, payload CreateSessionPayload) (*RemoteSession, error) {
	var session RemoteSession
	if err := c.doJSON(ctx, http.MethodPost, "/sessions", payload, &session); err != nil {
		return nil, err
	}
	session.normalize()
	if session.Id == "" {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Detail: "Session created but no ID returned"}
	}
	return &session, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*RemoteSession, error) {
	var session RemoteSession
	if err := c.doJSON(ctx, http.MethodGet, sessionPath(id), nil, &session); err != nil {
		return nil, err
	}
	session.normalize()
	return &session, nil
}

func (c *Client) UpdateSession(ctx context.Context, id string, payload UpdateSessionPayload) (*RemoteSession, error) {
	var session RemoteSession
	if err := c.doJSON(ctx, http.MethodPut, sessionPath(id), payload, &session); err != nil {
		return nil, err
	}
	session.normalize()
	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, sessionPath(id), nil, nil)
}

func sessionPath(id string) string {
	return "/sessions/" + url.PathEscape(id)
}

func writeTranscribeForm(mw *multipart.Writer, in TranscribeRequest) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, in.Filename))
	if in.ContentType != "" {
		h.Set("Content-Type", in.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, in.Body); err != nil {
		return fmt.Errorf("stream audio: %w", err)
	}

	if in.Language != "" {
		if err := mw.WriteField("language", in.Language); err != nil {
			return err
		}
	}
	if err := mw.WriteField("task", in.Task); err != nil {
		return err
	}
	if err := mw.WriteField("enable_diarization", strconv.FormatBool(in.EnableDiarization)); err != nil {
		return err
	}
	if in.SessionId != "" {
		if err := mw.WriteField("session_id", in.SessionId); err != nil {
			return err
		}
	}
	return mw.Close()
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(bodyBytes, &eb) == nil {
			apiErr.Detail = eb.Detail
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
