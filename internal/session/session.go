// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session wires acquisition, selection, dispatch and clipboard
// feedback around one shared selection. Components never reference each
// other; they only meet in the selection.State owned here.
package session

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/sfenizer/internal/acquire"
	"github.com/pdiddy/sfenizer/internal/dispatch"
	"github.com/pdiddy/sfenizer/internal/feedback"
	"github.com/pdiddy/sfenizer/internal/notify"
	"github.com/pdiddy/sfenizer/internal/selection"
	"github.com/pdiddy/sfenizer/internal/service"
	"github.com/pdiddy/sfenizer/pkg/types"
)

// Deps are the collaborators a Session needs from its host.
type Deps struct {
	// HTTPClient is used for the conversion service. When nil a client
	// with the configured timeout is created.
	HTTPClient *http.Client

	// Converter overrides the service client (tests, offline hosts).
	Converter dispatch.Converter

	// Clipboard receives copied result text. Nil means no clipboard.
	Clipboard feedback.Clipboard

	// Notifier receives user-facing messages in addition to the
	// session's own recorder.
	Notifier notify.Notifier

	Logger zerolog.Logger
}

// Session is one open conversion session.
type Session struct {
	State    *selection.State
	Acquire  *acquire.Acquirer
	Dispatch *dispatch.Dispatcher
	Feedback *feedback.Copier

	// Service is nil when Deps.Converter was supplied.
	Service *service.Client

	// Notifications keeps recent messages for hosts that poll for them.
	Notifications *notify.Recorder
}

// New builds a Session from a resolved configuration.
func New(cfg types.Config, deps Deps) *Session {
	rec := notify.NewRecorder(0)
	var sink notify.Notifier = rec
	if deps.Notifier != nil {
		sink = notify.Multi{rec, deps.Notifier}
	}

	clip := deps.Clipboard
	if clip == nil {
		clip = feedback.Unavailable{}
	}

	s := &Session{
		State:         &selection.State{},
		Notifications: rec,
	}

	conv := deps.Converter
	if conv == nil {
		s.Service = service.NewClient(deps.HTTPClient, cfg.Service)
		conv = s.Service
	}

	s.Acquire = acquire.New(s.State, sink, deps.Logger.With().Str("component", "acquire").Logger(), cfg.Acquisition)
	s.Dispatch = dispatch.New(s.State, conv, sink, deps.Logger.With().Str("component", "dispatch").Logger())
	s.Feedback = feedback.New(clip, s.State, sink, deps.Logger.With().Str("component", "feedback").Logger(), cfg.Feedback)
	return s
}

// Snapshot returns the selection together with the copied indicators.
func (s *Session) Snapshot() types.Snapshot {
	snap := s.State.Snapshot()
	snap.Copied = s.Feedback.Flags()
	return snap
}

// Clear drops the selection, its result and the loading flag in one step,
// and lowers the copied indicators that referred to the old result.
func (s *Session) Clear() {
	s.State.Clear()
	s.Feedback.Reset()
}
