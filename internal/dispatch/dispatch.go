// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch sends the selected image to the conversion service and
// applies the outcome to the selection. At most one request is outstanding
// at a time, and a response for an image that is no longer selected is
// dropped.
package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/sfenizer/internal/notify"
	"github.com/pdiddy/sfenizer/internal/selection"
	"github.com/pdiddy/sfenizer/internal/service"
	"github.com/pdiddy/sfenizer/pkg/types"
)

// User-facing messages.
const (
	MsgNoSelection = "no image selected"
	MsgInFlight    = "conversion already in progress"
	MsgConverted   = "conversion complete"
	MsgProtocol    = "conversion failed: unexpected response from the conversion service"
	MsgUnreachable = "conversion failed: could not reach the conversion service"
)

// Converter uploads an image and returns the decoded position.
type Converter interface {
	Convert(ctx context.Context, filename, mimeType string, data []byte) (*types.ConversionResult, error)
}

// Outcome is the terminal state of one Convert call.
type Outcome int

const (
	// OutcomeRejected means a precondition failed and nothing was sent.
	OutcomeRejected Outcome = iota
	// OutcomeApplied means the result was stored for the selected image.
	OutcomeApplied
	// OutcomeFailed means the request failed and the user was notified.
	OutcomeFailed
	// OutcomeStale means the response arrived after the image was replaced
	// or cleared and was discarded.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	}
	return "unknown"
}

// Dispatcher runs conversions for one selection.
type Dispatcher struct {
	state    *selection.State
	conv     Converter
	notifier notify.Notifier
	logger   zerolog.Logger

	// busy spans the whole request, including after a Clear resets the
	// visible loading flag, so a new request never overlaps an old one.
	busy atomic.Bool
}

// New returns a Dispatcher that converts the artifact selected in state.
func New(state *selection.State, conv Converter, notifier notify.Notifier, logger zerolog.Logger) *Dispatcher {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Dispatcher{state: state, conv: conv, notifier: notifier, logger: logger}
}

// Busy reports whether a request is outstanding.
func (d *Dispatcher) Busy() bool { return d.busy.Load() }

// Convert sends the selected image and waits for the response. Failures are
// reported through the notifier and returned for callers that care about
// the exit status; they never leave the dispatcher in a loading state.
//
// With nothing selected, or while another conversion is outstanding, it
// sends nothing and returns selection.ErrNoSelection or
// selection.ErrInFlight.
func (d *Dispatcher) Convert(ctx context.Context) (Outcome, error) {
	if !d.busy.CompareAndSwap(false, true) {
		d.notifier.Failure(MsgInFlight)
		return OutcomeRejected, selection.ErrInFlight
	}
	defer d.busy.Store(false)

	art, err := d.state.BeginConversion()
	if err != nil {
		if errors.Is(err, selection.ErrInFlight) {
			d.notifier.Failure(MsgInFlight)
		} else {
			d.notifier.Failure(MsgNoSelection)
		}
		return OutcomeRejected, err
	}
	defer d.state.SetLoading(false)

	log := d.logger.With().Str("artifact", art.ID).Str("name", art.Name).Logger()
	log.Info().Int("bytes", art.Size()).Msg("conversion started")
	start := time.Now()

	result, err := d.conv.Convert(ctx, art.Name, art.MIMEType, art.Bytes)
	elapsed := time.Since(start)

	if err != nil {
		if !d.state.IsCurrent(art.ID) {
			log.Debug().Err(err).Dur("elapsed", elapsed).Msg("dropping failure for superseded image")
			return OutcomeStale, err
		}
		msg := failureMessage(err)
		d.state.SetError(art.ID, msg)
		d.notifier.Failure(msg)
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("conversion failed")
		return OutcomeFailed, err
	}

	if !d.state.SetResult(art.ID, result) {
		log.Debug().Dur("elapsed", elapsed).Msg("dropping result for superseded image")
		return OutcomeStale, nil
	}
	d.notifier.Success(MsgConverted)
	log.Info().Str("sfen", result.SFEN).Dur("elapsed", elapsed).Msg("conversion applied")
	return OutcomeApplied, nil
}

// Result is what ConvertAsync delivers.
type Result struct {
	Outcome Outcome
	Err     error
}

// ConvertAsync runs Convert in the background so the caller keeps accepting
// input. The channel receives exactly one Result.
func (d *Dispatcher) ConvertAsync(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		o, err := d.Convert(ctx)
		ch <- Result{Outcome: o, Err: err}
	}()
	return ch
}

// failureMessage maps a conversion error to the text shown to the user.
func failureMessage(err error) string {
	var se *service.Error
	switch {
	case errors.As(err, &se):
		return se.Detail
	case errors.Is(err, service.ErrProtocol):
		return MsgProtocol
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "conversion cancelled"
	default:
		return MsgUnreachable
	}
}
