package browser

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// ConsoleLevel orders browser console message types by severity.
type ConsoleLevel int

const (
	ConsoleDebug ConsoleLevel = iota
	ConsoleInfo
	ConsoleWarning
	ConsoleError
)

// ParseConsoleLevel converts a config value ("debug", "info", "warning", "error").
func ParseConsoleLevel(s string) (ConsoleLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return ConsoleDebug, nil
	case "info", "log":
		return ConsoleInfo, nil
	case "warning", "warn":
		return ConsoleWarning, nil
	case "error", "":
		return ConsoleError, nil
	default:
		return ConsoleError, fmt.Errorf("invalid console level: %s (must be 'debug', 'info', 'warning', or 'error')", s)
	}
}

// levelOf maps a Playwright console message type to a severity.
func levelOf(msgType string) ConsoleLevel {
	switch msgType {
	case "error", "assert":
		return ConsoleError
	case "warning":
		return ConsoleWarning
	case "debug", "trace":
		return ConsoleDebug
	default:
		return ConsoleInfo
	}
}

// ConsoleMessage is a browser console entry as seen by observers.
type ConsoleMessage struct {
	Type string
	Text string
}

// ConsoleHandler receives console messages at or above the observer's level.
type ConsoleHandler func(ConsoleMessage)

const consoleBufferSize = 64

// ConsoleObserver forwards browser console messages to a handler on its own
// goroutine so the page event callback never waits on the handler.
type ConsoleObserver struct {
	min     ConsoleLevel
	handler ConsoleHandler
	trace   ConsoleHandler

	msgs    chan ConsoleMessage
	done    chan struct{}
	dropped atomic.Int64

	mu       sync.Mutex
	stopped  bool
	stopOnce sync.Once
}

// NewConsoleObserver starts an observer. trace, when non-nil, receives every
// message regardless of level.
func NewConsoleObserver(min ConsoleLevel, handler, trace ConsoleHandler) *ConsoleObserver {
	o := &ConsoleObserver{
		min:     min,
		handler: handler,
		trace:   trace,
		msgs:    make(chan ConsoleMessage, consoleBufferSize),
		done:    make(chan struct{}),
	}
	go o.loop()
	return o
}

func (o *ConsoleObserver) loop() {
	defer close(o.done)
	for msg := range o.msgs {
		if o.trace != nil {
			o.trace(msg)
		}
		if levelOf(msg.Type) >= o.min && o.handler != nil {
			o.handler(msg)
		}
	}
}

// Publish enqueues a message. It never blocks: when the buffer is full the
// message is dropped and counted.
func (o *ConsoleObserver) Publish(msg ConsoleMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return
	}
	select {
	case o.msgs <- msg:
	default:
		o.dropped.Add(1)
	}
}

// Dropped returns the number of messages lost to a full buffer.
func (o *ConsoleObserver) Dropped() int64 {
	return o.dropped.Load()
}

// Stop drains pending messages and waits for the handler goroutine to exit.
func (o *ConsoleObserver) Stop() {
	o.stopOnce.Do(func() {
		o.mu.Lock()
		o.stopped = true
		close(o.msgs)
		o.mu.Unlock()
	})
	<-o.done
}
