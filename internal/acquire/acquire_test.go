// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sfenizer/internal/notify"
	"github.com/pdiddy/sfenizer/internal/selection"
	"github.com/pdiddy/sfenizer/pkg/types"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestAcquirer(max int64) (*Acquirer, *selection.State, *notify.Recorder) {
	state := &selection.State{}
	rec := notify.NewRecorder(0)
	a := New(state, rec, zerolog.Nop(), types.AcquisitionConfig{MaxImageBytes: max})
	n := 0
	a.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return a, state, rec
}

// channel adapts each acquisition entry point to a single-candidate call.
type channel struct {
	name string
	src  types.Source
	call func(a *Acquirer, c Candidate) (*types.ImageArtifact, error)
}

var channels = []channel{
	{"file dialog", types.SourceFile, func(a *Acquirer, c Candidate) (*types.ImageArtifact, error) {
		return a.FromFileDialog(context.Background(), []Candidate{c})
	}},
	{"camera", types.SourceCamera, func(a *Acquirer, c Candidate) (*types.ImageArtifact, error) {
		return a.FromCamera(context.Background(), []Candidate{c})
	}},
	{"drop", types.SourceDrop, func(a *Acquirer, c Candidate) (*types.ImageArtifact, error) {
		return a.FromDrop(context.Background(), []Candidate{c})
	}},
	{"paste", types.SourcePaste, func(a *Acquirer, c Candidate) (*types.ImageArtifact, error) {
		item := types.ClipboardItem{
			MIMEType: c.MIMEType,
			Name:     c.Name,
			Data: func() ([]byte, error) {
				rc, err := c.Open()
				if err != nil {
					return nil, err
				}
				defer rc.Close()
				return io.ReadAll(rc)
			},
		}
		return a.FromPaste(context.Background(), []types.ClipboardItem{item})
	}},
}

func TestChannelsRejectNonImage(t *testing.T) {
	for _, ch := range channels {
		t.Run(ch.name, func(t *testing.T) {
			a, state, rec := newTestAcquirer(0)
			prior := &types.ImageArtifact{ID: "prior", MIMEType: "image/png"}
			state.SetArtifact(prior)
			state.SetResult("prior", &types.ConversionResult{SFEN: "S"})

			_, err := ch.call(a, BytesCandidate("notes.txt", "text/plain", []byte("hello")))
			require.Error(t, err)
			assert.True(t, Ignored(err))

			snap := state.Snapshot()
			assert.Equal(t, "prior", snap.Artifact.ID)
			require.NotNil(t, snap.Result)
			assert.Equal(t, "S", snap.Result.SFEN)
			assert.Empty(t, rec.All())
		})
	}
}

func TestChannelsAcceptImageAndClearResult(t *testing.T) {
	for _, ch := range channels {
		t.Run(ch.name, func(t *testing.T) {
			a, state, _ := newTestAcquirer(0)
			state.SetArtifact(&types.ImageArtifact{ID: "prior"})
			state.SetResult("prior", &types.ConversionResult{SFEN: "S"})

			art, err := ch.call(a, BytesCandidate("board.png", "image/png", pngHeader))
			require.NoError(t, err)

			snap := state.Snapshot()
			require.NotNil(t, snap.Artifact)
			assert.Equal(t, art.ID, snap.Artifact.ID)
			assert.Equal(t, ch.src, snap.Artifact.Source)
			assert.Equal(t, pngHeader, snap.Artifact.Bytes)
			assert.True(t, strings.HasPrefix(snap.Artifact.PreviewURI, "data:image/png;base64,"))
			assert.Nil(t, snap.Result)
		})
	}
}

func TestFirstCandidateOnly(t *testing.T) {
	a, state, _ := newTestAcquirer(0)
	_, err := a.FromDrop(context.Background(), []Candidate{
		BytesCandidate("first.jpg", "image/jpeg", []byte("first")),
		BytesCandidate("second.png", "image/png", []byte("second")),
	})
	require.NoError(t, err)
	assert.Equal(t, "first.jpg", state.Snapshot().Artifact.Name)

	// A non-image first file is not skipped in favour of a later image.
	_, err = a.FromFileDialog(context.Background(), []Candidate{
		BytesCandidate("a.pdf", "application/pdf", []byte("%PDF")),
		BytesCandidate("b.png", "image/png", pngHeader),
	})
	assert.ErrorIs(t, err, ErrNotImage)
	assert.Equal(t, "first.jpg", state.Snapshot().Artifact.Name)
}

func TestEmptyChannelsAreNoOps(t *testing.T) {
	a, state, rec := newTestAcquirer(0)
	ctx := context.Background()

	_, err := a.FromDrop(ctx, nil)
	assert.ErrorIs(t, err, ErrNoFile)
	_, err = a.FromFileDialog(ctx, []Candidate{})
	assert.ErrorIs(t, err, ErrNoFile)
	_, err = a.FromPaste(ctx, []types.ClipboardItem{{MIMEType: "text/plain"}})
	assert.ErrorIs(t, err, ErrNoFile)

	assert.Nil(t, state.Snapshot().Artifact)
	assert.Empty(t, rec.All())
}

func TestPasteTakesFirstImageItem(t *testing.T) {
	a, state, _ := newTestAcquirer(0)
	var asked []string
	item := func(mime, name string) types.ClipboardItem {
		return types.ClipboardItem{MIMEType: mime, Name: name, Data: func() ([]byte, error) {
			asked = append(asked, name)
			return []byte(name), nil
		}}
	}

	_, err := a.FromPaste(context.Background(), []types.ClipboardItem{
		item("text/html", "html"),
		item("image/jpeg", "jpeg"),
		item("image/png", "png"),
	})
	require.NoError(t, err)

	art := state.Snapshot().Artifact
	assert.Equal(t, "image/jpeg", art.MIMEType)
	assert.Equal(t, []byte("jpeg"), art.Bytes)
	assert.Equal(t, []string{"jpeg"}, asked)
}

func TestReadFailureNotifiesAndKeepsState(t *testing.T) {
	a, state, rec := newTestAcquirer(0)
	state.SetArtifact(&types.ImageArtifact{ID: "prior"})

	broken := Candidate{Name: "x.png", MIMEType: "image/png", Open: func() (io.ReadCloser, error) {
		return nil, errors.New("permission denied")
	}}
	_, err := a.FromFileDialog(context.Background(), []Candidate{broken})
	require.Error(t, err)
	assert.False(t, Ignored(err))

	assert.Equal(t, "prior", state.Snapshot().Artifact.ID)
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.KindFailure, last.Kind)
	assert.Contains(t, last.Message, "permission denied")
}

func TestTooLarge(t *testing.T) {
	a, state, rec := newTestAcquirer(4)
	_, err := a.FromDrop(context.Background(), []Candidate{BytesCandidate("big.png", "image/png", []byte("12345"))})
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Nil(t, state.Snapshot().Artifact)
	assert.Equal(t, 1, rec.Count(notify.KindFailure))
}

func TestSupersededReadIsDiscarded(t *testing.T) {
	a, state, _ := newTestAcquirer(0)
	release := make(chan struct{})
	slow := Candidate{Name: "slow.png", MIMEType: "image/png", Open: func() (io.ReadCloser, error) {
		<-release
		return io.NopCloser(strings.NewReader("slow")), nil
	}}

	done := make(chan error, 1)
	go func() {
		_, err := a.FromFileDialog(context.Background(), []Candidate{slow})
		done <- err
	}()

	// Wait until the slow read has taken its ticket.
	require.Eventually(t, func() bool { return a.seq.Load() == 1 }, time.Second, 5*time.Millisecond)

	_, err := a.FromDrop(context.Background(), []Candidate{BytesCandidate("fast.png", "image/png", []byte("fast"))})
	require.NoError(t, err)

	close(release)
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, "fast.png", state.Snapshot().Artifact.Name)
}

func TestContextCancelledDuringRead(t *testing.T) {
	a, state, _ := newTestAcquirer(0)
	block := make(chan struct{})
	defer close(block)
	c := Candidate{Name: "hang.png", MIMEType: "image/png", Open: func() (io.ReadCloser, error) {
		<-block
		return io.NopCloser(strings.NewReader("")), nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.FromCamera(ctx, []Candidate{c})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, state.Snapshot().Artifact)
}

func TestFileCandidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		data     []byte
		wantMIME string
	}{
		{"extension png", "board.png", pngHeader, "image/png"},
		{"extension jpeg", "board.JPG", []byte("whatever"), "image/jpeg"},
		{"sniffed png", "board", pngHeader, "image/png"},
		{"sniffed text", "notes", []byte("plain words"), "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))

			c, err := FileCandidate(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, c.MIMEType)
			assert.Equal(t, tt.file, c.Name)

			rc, err := c.Open()
			require.NoError(t, err)
			defer rc.Close()
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
		})
	}

	_, err := FileCandidate(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	_, err = FileCandidate(dir)
	assert.Error(t, err)
}

func TestReaderCandidateSniffs(t *testing.T) {
	c, err := ReaderCandidate("stdin", strings.NewReader(string(pngHeader)), 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", c.MIMEType)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/png"))
	assert.True(t, IsImage("IMAGE/JPEG"))
	assert.True(t, IsImage(" image/webp"))
	assert.False(t, IsImage("application/octet-stream"))
	assert.False(t, IsImage(""))
	assert.False(t, IsImage("text/image/png"))
}
