// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sfenizer/pkg/types"
)

func artifact(id string) *types.ImageArtifact {
	return &types.ImageArtifact{ID: id, MIMEType: "image/png", Bytes: []byte(id)}
}

func TestSetArtifactClearsResultAndError(t *testing.T) {
	var s State
	s.SetArtifact(artifact("a"))
	require.True(t, s.SetResult("a", &types.ConversionResult{SFEN: "S"}))

	s.SetArtifact(artifact("b"))
	snap := s.Snapshot()
	assert.Equal(t, "b", snap.Artifact.ID)
	assert.Nil(t, snap.Result)
	assert.Empty(t, snap.Error)
}

func TestSetResultRejectsStaleArtifact(t *testing.T) {
	var s State
	s.SetArtifact(artifact("a"))
	s.SetArtifact(artifact("b"))

	assert.False(t, s.SetResult("a", &types.ConversionResult{SFEN: "stale"}))
	assert.Nil(t, s.Snapshot().Result)

	assert.True(t, s.SetResult("b", &types.ConversionResult{SFEN: "fresh"}))
	assert.Equal(t, "fresh", s.Snapshot().Result.SFEN)
}

func TestSetResultAfterClear(t *testing.T) {
	var s State
	s.SetArtifact(artifact("a"))
	s.Clear()
	assert.False(t, s.SetResult("a", &types.ConversionResult{}))
	assert.False(t, s.SetError("a", "boom"))
}

func TestBeginConversion(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *State)
		wantErr error
	}{
		{"nothing selected", func(s *State) {}, ErrNoSelection},
		{"selected", func(s *State) { s.SetArtifact(artifact("a")) }, nil},
		{"already loading", func(s *State) {
			s.SetArtifact(artifact("a"))
			s.SetLoading(true)
		}, ErrInFlight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			tt.setup(&s)
			a, err := s.BeginConversion()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", a.ID)
			assert.True(t, s.Snapshot().Loading)
		})
	}
}

func TestClearResetsEverything(t *testing.T) {
	var s State
	s.SetArtifact(artifact("a"))
	_, err := s.BeginConversion()
	require.NoError(t, err)
	s.SetResult("a", &types.ConversionResult{SFEN: "S"})

	s.Clear()
	snap := s.Snapshot()
	assert.Nil(t, snap.Artifact)
	assert.Nil(t, snap.Result)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
}

func TestSubscribeReceivesLatest(t *testing.T) {
	var s State
	ch, cancel := s.Subscribe()
	s.SetArtifact(artifact("a"))
	s.SetArtifact(artifact("b"))

	snap := <-ch
	require.NotNil(t, snap.Artifact)
	assert.Equal(t, "b", snap.Artifact.ID)

	cancel()
	cancel()
	s.Clear()
	select {
	case <-ch:
		t.Fatal("received snapshot after cancel")
	default:
	}
}
