package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrUnsupported = errors.New("audio: unsupported container")

// Metadata is what a prober could learn about an audio file. Zero fields are unknown.
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitRate    int64
}

// Opener returns a fresh reader over the whole file every call.
type Opener func() (io.ReadCloser, error)

type Prober interface {
	Probe(ctx context.Context, open Opener) (*Metadata, error)
}

// ChainProber tries each prober in order and returns the first success.
type ChainProber []Prober

func (c ChainProber) Probe(ctx context.Context, open Opener) (*Metadata, error) {
	var errs []error
	for _, p := range c {
		md, err := p.Probe(ctx, open)
		if err == nil {
			return md, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, ErrUnsupported
	}
	return nil, fmt.Errorf("probe audio: %w", errors.Join(errs...))
}
