package entity

import "time"

type TranscriptionStage string

const (
	StageUploading  TranscriptionStage = "uploading"
	StageProcessing TranscriptionStage = "processing"
	StageAnalyzing  TranscriptionStage = "analyzing"
	StageComplete   TranscriptionStage = "complete"
	StageError      TranscriptionStage = "error"
)

func (s TranscriptionStage) IsTerminal() bool {
	return s == StageComplete || s == StageError
}

type Segment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Speaker      string  `json:"speaker"`
	Text         string  `json:"text"`
	Emotion      string  `json:"emotion"`
	PolishedText string  `json:"polished_text"`
}

// TranscriptionResult is the backend response enriched with the local
// completion time and the chat session it was recorded for.
type TranscriptionResult struct {
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
	Timestamp      time.Time `json:"timestamp"`
	SessionId      string    `json:"sessionId,omitempty"`
}

type TranscriptionProgress struct {
	Stage    TranscriptionStage `json:"stage"`
	Progress int                `json:"progress"`
	Message  string             `json:"message"`
}

type AudioAnalysis struct {
	Duration float64 `json:"duration"`
	Format   string  `json:"format"`
	Quality  string  `json:"quality"`
	FileSize int64   `json:"fileSize"`
}

type TranscriptionStats struct {
	TotalSegments  int            `json:"totalSegments"`
	UniqueSpeakers int            `json:"uniqueSpeakers"`
	Emotions       map[string]int `json:"emotions"`
	Duration       float64        `json:"duration"`
	WordCount      int            `json:"wordCount"`
}
