package backend

import (
	"io"
	"time"
)

type User struct {
	Id        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type SignUpPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInPayload struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// TranscribeRequest is sent as multipart/form-data. Body is streamed, not buffered.
type TranscribeRequest struct {
	Filename          string
	ContentType       string
	Body              io.Reader
	Language          string
	Task              string
	EnableDiarization bool
	SessionId         string
	BearerToken       string
}

type Segment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Speaker      string  `json:"speaker"`
	Text         string  `json:"text"`
	Emotion      string  `json:"emotion"`
	PolishedText string  `json:"polished_text"`
}

type TranscribeResponse struct {
	Id             int64     `json:"id"`
	Text           string    `json:"text"`
	AudioURL       string    `json:"audio_url"`
	Language       string    `json:"language"`
	Duration       float64   `json:"duration"`
	Filename       string    `json:"filename"`
	Segments       []Segment `json:"segments"`
	FormattedText  string    `json:"formatted_text"`
	Speakers       []string  `json:"speakers"`
	OverallEmotion string    `json:"overall_emotion"`
	PolishedText   string    `json:"polished_text"`
}

// RemoteSession is a chat session stored by the backend. Older backend
// builds return the identifier as chat_id.
type RemoteSession struct {
	Id          string `json:"id"`
	ChatId      string `json:"chat_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func (s *RemoteSession) normalize() {
	if s.Id == "" {
		s.Id = s.ChatId
	}
	if s.ChatId == "" {
		s.ChatId = s.Id
	}
}

type CreateSessionPayload struct {
	Title string `json:"title"`
}

// UpdateSessionPayload is a partial update; nil fields are omitted.
type UpdateSessionPayload struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Language    *string   `json:"language,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type errorBody struct {
	Detail string `json:"detail"`
}
