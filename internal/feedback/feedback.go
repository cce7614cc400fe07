// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feedback copies conversion results to the clipboard and keeps a
// short-lived "copied" indicator per result field.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/pdiddy/sfenizer/internal/notify"
	"github.com/pdiddy/sfenizer/internal/selection"
	"github.com/pdiddy/sfenizer/pkg/types"
)

// ErrNoResult means there is no conversion result to copy from.
var ErrNoResult = errors.New("no conversion result to copy")

// Clipboard is the write side of the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Copier writes result fields to a Clipboard.
type Copier struct {
	clip     Clipboard
	state    *selection.State
	notifier notify.Notifier
	logger   zerolog.Logger

	// flags holds one entry per recently copied field; an entry expires
	// after the reset delay and setting it again restarts the window.
	flags *cache.Cache
}

// New returns a Copier. Indicators stay set for cfg.CopyReset (two seconds
// when unset).
func New(clip Clipboard, state *selection.State, notifier notify.Notifier, logger zerolog.Logger, cfg types.FeedbackConfig) *Copier {
	reset := cfg.CopyReset
	if reset <= 0 {
		reset = types.DefaultCopyReset
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Copier{
		clip:     clip,
		state:    state,
		notifier: notifier,
		logger:   logger,
		flags:    cache.New(reset, reset),
	}
}

// Copy copies field from the current conversion result.
func (c *Copier) Copy(ctx context.Context, field types.Field) error {
	snap := c.state.Snapshot()
	if snap.Result == nil {
		c.notifier.Failure(ErrNoResult.Error())
		return ErrNoResult
	}
	return c.CopyText(ctx, snap.Result.Value(field), field)
}

// CopyText writes value to the clipboard and, on success, raises the
// indicator for field. A failed write leaves every indicator unchanged.
func (c *Copier) CopyText(ctx context.Context, value string, field types.Field) error {
	if err := c.clip.WriteText(ctx, value); err != nil {
		c.notifier.Failure(fmt.Sprintf("could not copy %s: %v", field.Label(), err))
		c.logger.Warn().Err(err).Str("field", string(field)).Msg("clipboard write failed")
		return fmt.Errorf("copying %s: %w", field, err)
	}
	c.flags.Set(string(field), true, cache.DefaultExpiration)
	c.notifier.Success(field.Label() + " copied")
	c.logger.Debug().Str("field", string(field)).Int("chars", len(value)).Msg("copied to clipboard")
	return nil
}

// Copied reports whether field was copied within the reset window.
func (c *Copier) Copied(field types.Field) bool {
	_, ok := c.flags.Get(string(field))
	return ok
}

// Flags returns the indicator for every field.
func (c *Copier) Flags() types.CopiedFlags {
	return types.CopiedFlags{
		SFEN: c.Copied(types.FieldSFEN),
		CSA:  c.Copied(types.FieldCSA),
	}
}

// Reset lowers every indicator.
func (c *Copier) Reset() {
	c.flags.Flush()
}

// Expiry returns when the indicator for field lowers, if it is raised.
func (c *Copier) Expiry(field types.Field) (time.Time, bool) {
	_, exp, ok := c.flags.GetWithExpiration(string(field))
	return exp, ok
}

// Unavailable is a Clipboard for environments without one; every write
// fails with Err.
type Unavailable struct {
	Err error
}

func (u Unavailable) WriteText(context.Context, string) error {
	if u.Err != nil {
		return u.Err
	}
	return errors.New("clipboard unavailable")
}
