// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire turns images offered through any input channel into the
// selected artifact. File dialog, camera capture, drag-and-drop and
// clipboard paste all funnel into one normalization step: MIME check,
// binary read, preview encoding, publish.
package acquire

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/sfenizer/internal/notify"
	"github.com/pdiddy/sfenizer/internal/selection"
	"github.com/pdiddy/sfenizer/pkg/types"
)

var (
	// ErrNoFile means the channel offered nothing to select.
	ErrNoFile = errors.New("no file offered")

	// ErrNotImage means the offered input is not an image/* type.
	ErrNotImage = errors.New("not an image")

	// ErrTooLarge means the image exceeds the configured size cap.
	ErrTooLarge = errors.New("image too large")

	// ErrSuperseded means a newer selection started while this one was
	// being read; the older read is discarded.
	ErrSuperseded = errors.New("selection superseded")
)

// Ignored reports whether err is an input the channels drop silently,
// leaving the prior selection untouched and nothing shown to the user.
func Ignored(err error) bool {
	return errors.Is(err, ErrNoFile) || errors.Is(err, ErrNotImage) || errors.Is(err, ErrSuperseded)
}

// Candidate is a file offered by an input channel.
type Candidate struct {
	// Name is the original filename, if known.
	Name string

	// MIMEType is the declared content type.
	MIMEType string

	// Open returns the file contents. It is only called for candidates that
	// pass the MIME check.
	Open func() (io.ReadCloser, error)
}

// IsImage reports whether mimeType names an image type.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// Acquirer publishes accepted images to a selection.State.
type Acquirer struct {
	state    *selection.State
	notifier notify.Notifier
	logger   zerolog.Logger
	maxBytes int64

	seq       atomic.Uint64
	publishMu sync.Mutex
	newID     func() string
	now       func() time.Time
}

// New returns an Acquirer publishing into state.
func New(state *selection.State, notifier notify.Notifier, logger zerolog.Logger, cfg types.AcquisitionConfig) *Acquirer {
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = types.DefaultMaxImageBytes
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Acquirer{
		state:    state,
		notifier: notifier,
		logger:   logger,
		maxBytes: maxBytes,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// FromFileDialog selects the first file chosen in a file dialog.
func (a *Acquirer) FromFileDialog(ctx context.Context, files []Candidate) (*types.ImageArtifact, error) {
	return a.first(ctx, types.SourceFile, files)
}

// FromCamera selects the first image returned by a camera capture.
func (a *Acquirer) FromCamera(ctx context.Context, files []Candidate) (*types.ImageArtifact, error) {
	return a.first(ctx, types.SourceCamera, files)
}

// FromDrop selects the first dropped file. An empty drop or a non-image is
// ignored without a message.
func (a *Acquirer) FromDrop(ctx context.Context, files []Candidate) (*types.ImageArtifact, error) {
	return a.first(ctx, types.SourceDrop, files)
}

// FromPaste scans clipboard items in order and selects the first whose
// type is image/*. Later items are never looked at.
func (a *Acquirer) FromPaste(ctx context.Context, items []types.ClipboardItem) (*types.ImageArtifact, error) {
	for _, it := range items {
		if !IsImage(it.MIMEType) || it.Data == nil {
			continue
		}
		data := it.Data
		c := Candidate{
			Name:     it.Name,
			MIMEType: it.MIMEType,
			Open: func() (io.ReadCloser, error) {
				b, err := data()
				if err != nil {
					return nil, err
				}
				return io.NopCloser(bytes.NewReader(b)), nil
			},
		}
		return a.accept(ctx, types.SourcePaste, c)
	}
	return nil, fmt.Errorf("paste: %w", ErrNoFile)
}

func (a *Acquirer) first(ctx context.Context, src types.Source, files []Candidate) (*types.ImageArtifact, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", src, ErrNoFile)
	}
	return a.accept(ctx, src, files[0])
}

type readResult struct {
	data []byte
	err  error
}

// accept is the shared normalization step. Non-image candidates return
// before anything is read or published.
func (a *Acquirer) accept(ctx context.Context, src types.Source, c Candidate) (*types.ImageArtifact, error) {
	if !IsImage(c.MIMEType) {
		a.logger.Debug().Str("source", string(src)).Str("mime", c.MIMEType).Msg("ignoring non-image input")
		return nil, fmt.Errorf("%s %q (%s): %w", src, c.Name, c.MIMEType, ErrNotImage)
	}
	if c.Open == nil {
		return nil, fmt.Errorf("%s: %w", src, ErrNoFile)
	}

	ticket := a.seq.Add(1)

	var res readResult
	select {
	case res = <-a.read(c):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		msg := fmt.Sprintf("could not read image: %v", res.err)
		if errors.Is(res.err, ErrTooLarge) {
			msg = fmt.Sprintf("image is larger than %d bytes", a.maxBytes)
		}
		a.notifier.Failure(msg)
		a.logger.Warn().Err(res.err).Str("source", string(src)).Str("name", c.Name).Msg("image read failed")
		return nil, fmt.Errorf("reading %s image: %w", src, res.err)
	}

	a.publishMu.Lock()
	defer a.publishMu.Unlock()

	// A newer selection began while this one was being read.
	if a.seq.Load() != ticket {
		return nil, fmt.Errorf("%s: %w", src, ErrSuperseded)
	}

	mimeType := strings.ToLower(strings.TrimSpace(c.MIMEType))
	art := &types.ImageArtifact{
		ID:         a.newID(),
		Name:       c.Name,
		MIMEType:   mimeType,
		Source:     src,
		Bytes:      res.data,
		PreviewURI: PreviewURI(mimeType, res.data),
		SelectedAt: a.now(),
	}
	a.state.SetArtifact(art)
	a.logger.Info().
		Str("id", art.ID).
		Str("source", string(src)).
		Str("name", art.Name).
		Str("mime", art.MIMEType).
		Int("bytes", len(art.Bytes)).
		Msg("image selected")
	return art, nil
}

// read loads the candidate in the background. The channel receives exactly
// one result.
func (a *Acquirer) read(c Candidate) <-chan readResult {
	ch := make(chan readResult, 1)
	go func() {
		data, err := readLimited(c, a.maxBytes)
		ch <- readResult{data: data, err: err}
	}()
	return ch
}

func readLimited(c Candidate, max int64) ([]byte, error) {
	rc, err := c.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrTooLarge
	}
	return data, nil
}

// PreviewURI encodes data as an inline data: URI.
func PreviewURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
