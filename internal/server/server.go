// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes a session over local HTTP so a browser page or a
// script can drive it: file and camera uploads, drops, pastes, drag
// feedback, conversion, copy and clear. Conversions run in the background;
// the page polls GET /state or listens on GET /events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/pdiddy/sfenizer/internal/acquire"
	"github.com/pdiddy/sfenizer/internal/dispatch"
	"github.com/pdiddy/sfenizer/internal/feedback"
	"github.com/pdiddy/sfenizer/internal/selection"
	"github.com/pdiddy/sfenizer/internal/session"
	"github.com/pdiddy/sfenizer/pkg/types"
)

// multipartOverhead is allowed on top of the image cap for form framing.
const multipartOverhead = 1 << 20

// Server serves one session.
type Server struct {
	sess     *session.Session
	drag     acquire.DragTracker
	router   *mux.Router
	logger   zerolog.Logger
	maxBytes int64

	// baseCtx outlives requests; background conversions run under it.
	baseCtx context.Context
}

// Option configures the Server instance.
type Option func(*Server)

// WithBaseContext sets the context background conversions run under.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) { s.baseCtx = ctx }
}

// WithMaxImageBytes sets the largest accepted upload.
func WithMaxImageBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// New creates a Server for sess.
func New(sess *session.Session, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		sess:     sess,
		router:   mux.NewRouter(),
		logger:   logger,
		maxBytes: types.DefaultMaxImageBytes,
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server, wrapped in CORS so a
// page served from another origin can drive it.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type"},
	})
	return c.Handler(s.router)
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	s.router.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	s.router.HandleFunc("/preview", s.handlePreview).Methods(http.MethodGet)
	s.router.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)

	// Acquisition channels.
	s.router.HandleFunc("/select", s.handleSelect).Methods(http.MethodPost)
	s.router.HandleFunc("/drop", s.handleDrop).Methods(http.MethodPost)
	s.router.HandleFunc("/paste", s.handlePaste).Methods(http.MethodPost)
	s.router.HandleFunc("/drag/{event}", s.handleDrag).Methods(http.MethodPost)

	s.router.HandleFunc("/convert", s.handleConvert).Methods(http.MethodPost)
	s.router.HandleFunc("/copy/{field}", s.handleCopy).Methods(http.MethodPost)
	s.router.HandleFunc("/selection", s.handleClear).Methods(http.MethodDelete)
}

// stateResponse is the session snapshot plus surface-local drag state.
type stateResponse struct {
	types.Snapshot
	DragActive bool `json:"drag_active"`
}

func (s *Server) state() stateResponse {
	return stateResponse{Snapshot: s.sess.Snapshot(), DragActive: s.drag.Active()}
}

// ---- Handlers -----------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sess.Notifications.All())
}

func (s *Server) handlePreview(w http.ResponseWriter, _ *http.Request) {
	art := s.sess.State.Snapshot().Artifact
	if art == nil {
		http.Error(w, "no image selected", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", art.MIMEType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(art.Bytes)
}

// handleSelect serves the file dialog and camera channels. The form field
// "source" is "camera" for camera captures; anything else is a file pick.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	files, form, err := s.formFiles(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pick := s.sess.Acquire.FromFileDialog
	if form != nil && strings.EqualFold(firstValue(form.Value["source"]), string(types.SourceCamera)) {
		pick = s.sess.Acquire.FromCamera
	}
	_, err = pick(r.Context(), files)
	s.writeAcquired(w, err)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	s.drag.Handle(acquire.DragDrop)
	files, _, err := s.formFiles(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, err = s.sess.Acquire.FromDrop(r.Context(), files)
	s.writeAcquired(w, err)
}

// handlePaste treats every multipart part, in order, as one clipboard item
// typed by its Content-Type header.
func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, fmt.Sprintf("expected multipart body: %v", err), http.StatusBadRequest)
		return
	}

	var items []types.ClipboardItem
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("reading paste: %v", err), http.StatusBadRequest)
			return
		}
		mimeType := partType(part)
		name := part.FileName()
		if !acquire.IsImage(mimeType) {
			part.Close()
			items = append(items, types.ClipboardItem{MIMEType: mimeType, Name: name})
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("reading paste: %v", err), http.StatusBadRequest)
			return
		}
		items = append(items, types.ClipboardItem{
			MIMEType: mimeType,
			Name:     name,
			Data:     func() ([]byte, error) { return data, nil },
		})
	}

	_, err = s.sess.Acquire.FromPaste(r.Context(), items)
	s.writeAcquired(w, err)
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	ev, ok := acquire.ParseDragEvent(mux.Vars(r)["event"])
	if !ok || ev == acquire.DragDrop {
		http.Error(w, "drag event must be enter, over or leave", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"drag_active": s.drag.Handle(ev)})
}

// handleConvert starts a conversion and returns 202 without waiting, unless
// ?wait=true is given. Rejections are answered synchronously.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	snap := s.sess.State.Snapshot()
	if snap.Artifact == nil || snap.Loading || s.sess.Dispatch.Busy() {
		_, err := s.sess.Dispatch.Convert(r.Context())
		s.writeRejected(w, err)
		return
	}

	done := s.sess.Dispatch.ConvertAsync(s.baseCtx)
	if r.URL.Query().Get("wait") != "true" {
		s.writeJSON(w, http.StatusAccepted, s.state())
		return
	}

	select {
	case res := <-done:
		if res.Outcome == dispatch.OutcomeRejected {
			s.writeRejected(w, res.Err)
			return
		}
		status := http.StatusOK
		if res.Outcome == dispatch.OutcomeFailed {
			status = http.StatusBadGateway
		}
		s.writeJSON(w, status, s.state())
	case <-r.Context().Done():
		// The conversion keeps running; the client just stopped waiting.
	}
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	field, ok := types.ParseField(mux.Vars(r)["field"])
	if !ok {
		http.Error(w, "field must be sfen or csa", http.StatusNotFound)
		return
	}
	err := s.sess.Feedback.Copy(r.Context(), field)
	switch {
	case errors.Is(err, feedback.ErrNoResult):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.writeJSON(w, http.StatusOK, s.sess.Feedback.Flags())
	}
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.sess.Clear()
	s.writeJSON(w, http.StatusOK, s.state())
}

// handleEvents streams a snapshot as a server-sent event after every
// selection change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	updates, cancel := s.sess.State.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func() bool {
		data, err := json.Marshal(s.state())
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send() {
		return
	}

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-updates:
			if !send() {
				return
			}
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// ---- Helpers ------------------------------------------------------------

// formFiles parses a multipart upload and returns its "file" parts in order.
func (s *Server) formFiles(w http.ResponseWriter, r *http.Request) ([]acquire.Candidate, *multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		return nil, nil, fmt.Errorf("expected multipart upload: %w", err)
	}
	form := r.MultipartForm
	headers := form.File["file"]
	files := make([]acquire.Candidate, 0, len(headers))
	for _, fh := range headers {
		files = append(files, acquire.Candidate{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Open:     func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return files, form, nil
}

// writeAcquired answers an acquisition: 200 with the new state, 204 when the
// input was ignored, 400 when it could not be read.
func (s *Server) writeAcquired(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, s.state())
	case acquire.Ignored(err):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, acquire.ErrTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, context.Canceled):
		// Client went away.
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *Server) writeRejected(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, selection.ErrInFlight):
		http.Error(w, dispatch.MsgInFlight, http.StatusConflict)
	case errors.Is(err, selection.ErrNoSelection):
		http.Error(w, dispatch.MsgNoSelection, http.StatusBadRequest)
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		s.writeJSON(w, http.StatusOK, s.state())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encoding response")
	}
}

func partType(p *multipart.Part) string {
	ct := p.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

func firstValue(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}
