package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"signin", "signup", "logout", "whoami", "transcribe", "history", "sessions", "remote"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestAudioFileFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Meeting.WAV")
	require.NoError(t, os.WriteFile(path, []byte("RIFFdata"), 0o644))

	tests := []struct {
		name        string
		override    string
		contentType string
	}{
		{"guessed from extension", "", "audio/wav"},
		{"explicit override", "audio/webm", "audio/webm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := audioFileFromPath(path, tt.override)
			require.NoError(t, err)

			assert.Equal(t, "Meeting.WAV", file.Filename)
			assert.Equal(t, tt.contentType, file.ContentType)
			assert.Equal(t, int64(8), file.Size)

			rc, err := file.Open()
			require.NoError(t, err)
			defer rc.Close()
			body, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "RIFFdata", string(body))
		})
	}
}

func TestAudioFileFromPath_Missing(t *testing.T) {
	_, err := audioFileFromPath(filepath.Join(t.TempDir(), "nope.mp3"), "")
	assert.Error(t, err)
}

func TestRemoteCommand_Subcommands(t *testing.T) {
	remote := newRemoteCommand()

	names := map[string]bool{}
	for _, c := range remote.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"create", "rename", "delete", "transcribe"} {
		assert.True(t, names[want], "missing remote subcommand %s", want)
	}
	assert.Equal(t, "100", remote.Flags().Lookup("limit").DefValue)
}
