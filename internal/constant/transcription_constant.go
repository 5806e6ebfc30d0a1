package constant

const (
	ProgressMessagePreparing  = "Preparing audio file..."
	ProgressMessageUploading  = "Uploading audio file..."
	ProgressMessageProcessing = "Processing audio with Whisper AI..."
	ProgressMessageAnalyzing  = "Analyzing speech patterns and emotions..."
	ProgressMessageComplete   = "Transcription completed successfully!"

	AudioQualityHigh     = "high"
	AudioQualityMedium   = "medium"
	AudioQualityStandard = "standard"
	AudioQualityUnknown  = "unknown"
)

var AllowedAudioTypes = []string{
	"audio/mpeg",
	"audio/mp3",
	"audio/wav",
	"audio/flac",
	"audio/m4a",
	"audio/aac",
	"audio/ogg",
	"audio/webm",
}

var SupportedLanguages = []string{"kk", "ru", "en"}
