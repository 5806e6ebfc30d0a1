package constant

// Durable client storage keys. The value under every key is JSON.
const (
	StorageKeyUser                 = "user"
	StorageKeySessionToken         = "sessionToken"
	StorageKeySessionExpiry        = "sessionExpiry"
	StorageKeyTranscriptionHistory = "transcriptionHistory"
	StorageKeyChatSessions         = "chatSessions"
	storageKeyMessagesPrefix       = "messages_"
)

func MessagesKey(sessionId string) string {
	return storageKeyMessagesPrefix + sessionId
}
