package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWAV returns a PCM WAV with the given byte rate and data size.
func buildWAV(t *testing.T, sampleRate uint32, channels, bits uint16, dataSize uint32, extraChunk bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	blockAlign := channels * bits / 8
	byteRate := sampleRate * uint32(blockAlign)

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	if extraChunk {
		buf.WriteString("LIST")
		_ = binary.Write(&buf, binary.LittleEndian, uint32(3))
		buf.Write([]byte{1, 2, 3, 0}) // odd size plus pad byte
	}
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, wavFormat{
		AudioFormat:   1,
		Channels:      channels,
		SampleRate:    sampleRate,
		ByteRate:      byteRate,
		BlockAlign:    blockAlign,
		BitsPerSample: bits,
	})
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func opener(b []byte) Opener {
	return func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil }
}

func TestWAVProber(t *testing.T) {
	tests := []struct {
		name         string
		wav          []byte
		wantDuration float64
	}{
		{"ten seconds mono 16k", buildWAV(t, 16000, 1, 16, 320000, false), 10},
		{"skips unknown chunks", buildWAV(t, 8000, 2, 16, 64000, true), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := NewWAVProber().Probe(context.Background(), opener(tt.wav))
			require.NoError(t, err)
			assert.InDelta(t, tt.wantDuration, md.Duration, 1e-9)
		})
	}
}

func TestWAVProber_NotWAV(t *testing.T) {
	_, err := NewWAVProber().Probe(context.Background(), opener([]byte("ID3\x03 not a wav file")))
	assert.ErrorIs(t, err, ErrUnsupported)
}

type stubProber struct {
	md  *Metadata
	err error
}

func (s stubProber) Probe(context.Context, Opener) (*Metadata, error) { return s.md, s.err }

func TestChainProber(t *testing.T) {
	want := &Metadata{Duration: 3}
	chain := ChainProber{
		stubProber{err: errors.New("ffprobe missing")},
		stubProber{md: want},
	}

	md, err := chain.Probe(context.Background(), opener(nil))
	require.NoError(t, err)
	assert.Same(t, want, md)

	_, err = ChainProber{stubProber{err: ErrUnsupported}}.Probe(context.Background(), opener(nil))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseFFProbeOutput(t *testing.T) {
	raw := []byte(`{"streams":[{"codec_type":"audio","sample_rate":"44100","channels":2}],
		"format":{"duration":"12.500000","bit_rate":"128000"}}`)

	md, err := parseFFProbeOutput(raw)
	require.NoError(t, err)
	assert.Equal(t, 12.5, md.Duration)
	assert.Equal(t, 44100, md.SampleRate)
	assert.Equal(t, int64(128000), md.BitRate)

	_, err = parseFFProbeOutput([]byte(`{"format":{}}`))
	assert.Error(t, err)
}
