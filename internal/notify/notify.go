// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers one-shot user-facing messages. Sinks are
// fire-and-forget: callers never wait for or inspect delivery.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Kind distinguishes success and failure messages.
type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// Notification is a single delivered message.
type Notification struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier is the sink components write user-facing messages to.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// Console prints colored one-line messages to a writer.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	ok  *color.Color
	bad *color.Color
}

// NewConsole returns a Console writing to w. Color is disabled automatically
// when w is not a terminal (see color.NoColor).
func NewConsole(w io.Writer) *Console {
	return &Console{
		w:   w,
		ok:  color.New(color.FgGreen, color.Bold),
		bad: color.New(color.FgRed, color.Bold),
	}
}

func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", c.ok.Sprint("✓"), msg)
}

func (c *Console) Failure(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", c.bad.Sprint("✗"), msg)
}

// Log records notifications as log events.
type Log struct {
	Logger zerolog.Logger
}

func (l Log) Success(msg string) {
	l.Logger.Info().Str("notification", string(KindSuccess)).Msg(msg)
}

func (l Log) Failure(msg string) {
	l.Logger.Warn().Str("notification", string(KindFailure)).Msg(msg)
}

const defaultRecorderSize = 32

// Recorder keeps the most recent notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	size  int
	items []Notification
	now   func() time.Time
}

// NewRecorder keeps at most size notifications; size <= 0 uses 32.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = defaultRecorderSize
	}
	return &Recorder{size: size, now: time.Now}
}

func (r *Recorder) Success(msg string) { r.add(KindSuccess, msg) }
func (r *Recorder) Failure(msg string) { r.add(KindFailure, msg) }

func (r *Recorder) add(kind Kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Kind: kind, Message: msg, At: r.now()})
	if len(r.items) > r.size {
		r.items = r.items[len(r.items)-r.size:]
	}
}

// All returns a copy of the recorded notifications, oldest first.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the newest notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// Multi fans a notification out to every sink.
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Failure(msg string) {
	for _, n := range m {
		n.Failure(msg)
	}
}

// Discard drops every notification.
var Discard Notifier = Multi(nil)
