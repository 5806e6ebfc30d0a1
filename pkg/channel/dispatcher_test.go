package channel

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type captureLogger struct {
	infos []string
	warns []string
}

func (l *captureLogger) Info(_, message string, _ map[string]interface{}) {
	l.infos = append(l.infos, message)
}

func (l *captureLogger) Warn(_, message string, _ map[string]interface{}) {
	l.warns = append(l.warns, message)
}

func TestDispatcher(t *testing.T) {
	log := &captureLogger{}
	d := NewDispatcher(log)

	var got []string
	d.Handle("new_message", func(frame json.RawMessage) error {
		got = append(got, string(frame))
		return nil
	})
	d.Handle("broken", func(json.RawMessage) error { return errors.New("boom") })

	d.Dispatch([]byte(`{"type":"new_message","message":{"id":"m1"}}`))
	d.Dispatch([]byte(`{"type":"presence"}`))
	d.Dispatch([]byte(`not json`))
	d.Dispatch([]byte(`{"type":"broken"}`))

	assert.Equal(t, []string{`{"type":"new_message","message":{"id":"m1"}}`}, got)
	assert.Equal(t, []string{"Unknown channel frame type"}, log.infos)
	assert.Equal(t, []string{"Failed to parse channel frame", "Channel frame handler failed"}, log.warns)
}
