package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFProbe reads container metadata by piping the file into ffprobe.
type FFProbe struct {
	command string
}

func NewFFProbe(command string) *FFProbe {
	if command == "" {
		command = "ffprobe"
	}
	return &FFProbe{command: command}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

func (p *FFProbe) Probe(ctx context.Context, open Opener) (*Metadata, error) {
	if _, err := exec.LookPath(p.command); err != nil {
		return nil, fmt.Errorf("ffprobe not available: %w", err)
	}

	in, err := open()
	if err != nil {
		return nil, err
	}
	defer in.Close()

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-i", "pipe:0",
	}
	cmd := exec.CommandContext(ctx, p.command, args...)
	cmd.Stdin = in
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseFFProbeOutput(stdout.Bytes())
}

func parseFFProbeOutput(raw []byte) (*Metadata, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	md := &Metadata{}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		md.Duration = d
	}
	if br, err := strconv.ParseInt(out.Format.BitRate, 10, 64); err == nil {
		md.BitRate = br
	}
	for _, s := range out.Streams {
		if s.CodecType != "audio" {
			continue
		}
		md.SampleRate, _ = strconv.Atoi(s.SampleRate)
		md.Channels = s.Channels
		break
	}

	if md.Duration <= 0 {
		return nil, fmt.Errorf("ffprobe reported no duration")
	}
	return md, nil
}
