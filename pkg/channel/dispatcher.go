package channel

import (
	"encoding/json"
	"sync"
)

// HandlerFunc receives the complete inbound frame.
type HandlerFunc func(frame json.RawMessage) error

// Dispatcher routes inbound JSON frames by their "type" tag.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   Logger
}

func NewDispatcher(logger Logger) *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc), logger: logger}
}

func (d *Dispatcher) Handle(frameType string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[frameType] = h
}

// Dispatch never fails: malformed frames, unknown types and handler errors
// are logged and dropped.
func (d *Dispatcher) Dispatch(data []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		d.warn("Failed to parse channel frame", map[string]interface{}{"error": err.Error()})
		return
	}

	d.mu.RLock()
	h, ok := d.handlers[head.Type]
	d.mu.RUnlock()
	if !ok {
		if d.logger != nil {
			d.logger.Info(logModule, "Unknown channel frame type", map[string]interface{}{"type": head.Type})
		}
		return
	}

	if err := h(json.RawMessage(data)); err != nil {
		d.warn("Channel frame handler failed", map[string]interface{}{"type": head.Type, "error": err.Error()})
	}
}

func (d *Dispatcher) warn(msg string, details map[string]interface{}) {
	if d.logger != nil {
		d.logger.Warn(logModule, msg, details)
	}
}
