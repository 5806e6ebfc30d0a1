package constant

const (
	ChatMessageSenderUser   = "user"
	ChatMessageSenderSystem = "system"

	// Inbound channel envelope types
	ChannelEventTranscriptionProgress = "transcription_progress"
	ChannelEventNewMessage            = "new_message"
	ChannelEventAuth                  = "auth"

	RecordingStartedMessage = "Recording started..."
)
