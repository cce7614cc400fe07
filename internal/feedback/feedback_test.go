// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sfenizer/internal/notify"
	"github.com/pdiddy/sfenizer/internal/selection"
	"github.com/pdiddy/sfenizer/pkg/types"
)

type memClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (m *memClipboard) WriteText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

const testReset = 80 * time.Millisecond

func newTestCopier(clip Clipboard) (*Copier, *selection.State, *notify.Recorder) {
	state := &selection.State{}
	rec := notify.NewRecorder(0)
	return New(clip, state, rec, zerolog.Nop(), types.FeedbackConfig{CopyReset: testReset}), state, rec
}

func TestCopyTextSetsAndResetsFlag(t *testing.T) {
	clip := &memClipboard{}
	c, _, rec := newTestCopier(clip)

	require.NoError(t, c.CopyText(context.Background(), "S", types.FieldSFEN))
	assert.Equal(t, "S", clip.text)
	assert.True(t, c.Copied(types.FieldSFEN))
	assert.False(t, c.Copied(types.FieldCSA))

	last, _ := rec.Last()
	assert.Equal(t, notify.KindSuccess, last.Kind)
	assert.Equal(t, "SFEN copied", last.Message)

	assert.Eventually(t, func() bool { return !c.Copied(types.FieldSFEN) }, time.Second, 10*time.Millisecond)
}

func TestFlagsAreIndependent(t *testing.T) {
	c, _, _ := newTestCopier(&memClipboard{})
	ctx := context.Background()

	require.NoError(t, c.CopyText(ctx, "S", types.FieldSFEN))
	time.Sleep(testReset / 2)
	require.NoError(t, c.CopyText(ctx, "C", types.FieldCSA))

	assert.Equal(t, types.CopiedFlags{SFEN: true, CSA: true}, c.Flags())

	sfenExp, ok := c.Expiry(types.FieldSFEN)
	require.True(t, ok)
	csaExp, ok := c.Expiry(types.FieldCSA)
	require.True(t, ok)
	assert.True(t, csaExp.After(sfenExp))
}

func TestRepeatCopyRestartsWindow(t *testing.T) {
	c, _, _ := newTestCopier(&memClipboard{})
	ctx := context.Background()

	require.NoError(t, c.CopyText(ctx, "S", types.FieldSFEN))
	first, _ := c.Expiry(types.FieldSFEN)
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, c.CopyText(ctx, "S", types.FieldSFEN))
	second, _ := c.Expiry(types.FieldSFEN)

	assert.True(t, second.After(first))
}

func TestCopyFailureLeavesFlags(t *testing.T) {
	clip := &memClipboard{}
	c, _, rec := newTestCopier(clip)
	ctx := context.Background()

	require.NoError(t, c.CopyText(ctx, "C", types.FieldCSA))
	clip.err = errors.New("permission denied")

	err := c.CopyText(ctx, "S", types.FieldSFEN)
	require.Error(t, err)
	assert.False(t, c.Copied(types.FieldSFEN))
	assert.True(t, c.Copied(types.FieldCSA))

	last, _ := rec.Last()
	assert.Equal(t, notify.KindFailure, last.Kind)
	assert.Contains(t, last.Message, "permission denied")
}

func TestCopyFromResult(t *testing.T) {
	clip := &memClipboard{}
	c, state, _ := newTestCopier(clip)
	ctx := context.Background()

	assert.ErrorIs(t, c.Copy(ctx, types.FieldSFEN), ErrNoResult)

	state.SetArtifact(&types.ImageArtifact{ID: "a"})
	state.SetResult("a", &types.ConversionResult{SFEN: "S", CSA: "P1-KY\nP2"})

	require.NoError(t, c.Copy(ctx, types.FieldCSA))
	assert.Equal(t, "P1-KY\nP2", clip.text)
	assert.True(t, c.Copied(types.FieldCSA))

	c.Reset()
	assert.False(t, c.Copied(types.FieldCSA))
}
