package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// WAVProber reads duration straight from a RIFF/WAVE header.
type WAVProber struct{}

func NewWAVProber() *WAVProber { return &WAVProber{} }

type wavFormat struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

func (p *WAVProber) Probe(_ context.Context, open Opener) (*Metadata, error) {
	in, err := open()
	if err != nil {
		return nil, err
	}
	defer in.Close()

	return readWAVHeader(in)
}

func readWAVHeader(r io.Reader) (*Metadata, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, ErrUnsupported
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, ErrUnsupported
	}

	var format *wavFormat
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("wav: no data chunk: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, errors.New("wav: short fmt chunk")
			}
			var f wavFormat
			if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
				return nil, fmt.Errorf("wav: read fmt chunk: %w", err)
			}
			format = &f
			if err := skip(r, int64(size-16)+int64(size&1)); err != nil {
				return nil, err
			}
		case "data":
			if format == nil {
				return nil, errors.New("wav: data chunk before fmt chunk")
			}
			if format.ByteRate == 0 {
				return nil, errors.New("wav: zero byte rate")
			}
			return &Metadata{
				Duration:   float64(size) / float64(format.ByteRate),
				SampleRate: int(format.SampleRate),
				Channels:   int(format.Channels),
				BitRate:    int64(format.ByteRate) * 8,
			}, nil
		default:
			if err := skip(r, int64(size)+int64(size&1)); err != nil {
				return nil, err
			}
		}
	}
}

func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("wav: truncated chunk: %w", err)
	}
	return nil
}
