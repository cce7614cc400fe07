// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection holds the currently selected image and the outcome of
// its last conversion. Every mutation goes through a named entry point so
// the clear-on-reselect and single-flight rules live in one place.
package selection

import (
	"errors"
	"sync"

	"github.com/pdiddy/sfenizer/pkg/types"
)

var (
	// ErrNoSelection is returned by BeginConversion when nothing is selected.
	ErrNoSelection = errors.New("no image selected")

	// ErrInFlight is returned by BeginConversion while a request is outstanding.
	ErrInFlight = errors.New("conversion already in progress")
)

// State is the single selection holder for a session. The zero value is
// ready to use.
type State struct {
	mu       sync.Mutex
	artifact *types.ImageArtifact
	result   *types.ConversionResult
	loading  bool
	errMsg   string

	subs []chan types.Snapshot
}

// SetArtifact replaces the selected artifact. Any previous result and error
// are discarded in the same step.
func (s *State) SetArtifact(a *types.ImageArtifact) {
	s.mu.Lock()
	s.artifact = a
	s.result = nil
	s.errMsg = ""
	s.publishLocked()
	s.mu.Unlock()
}

// SetResult stores r if artifactID still names the selected artifact. It
// reports whether the result was applied; a superseded or cleared artifact
// leaves the state untouched.
func (s *State) SetResult(artifactID string, r *types.ConversionResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(artifactID) {
		return false
	}
	s.result = r
	s.errMsg = ""
	s.publishLocked()
	return true
}

// SetError records a failure message for artifactID, with the same
// staleness rule as SetResult.
func (s *State) SetError(artifactID, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(artifactID) {
		return false
	}
	s.errMsg = msg
	s.publishLocked()
	return true
}

// SetLoading sets the in-flight flag.
func (s *State) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.publishLocked()
	s.mu.Unlock()
}

// BeginConversion atomically checks the preconditions of a conversion and
// sets the in-flight flag. It returns the artifact being converted.
func (s *State) BeginConversion() (*types.ImageArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil, ErrInFlight
	}
	if s.artifact == nil {
		return nil, ErrNoSelection
	}
	s.loading = true
	s.errMsg = ""
	s.publishLocked()
	return s.artifact, nil
}

// Clear drops the artifact, result, error and loading flag together.
func (s *State) Clear() {
	s.mu.Lock()
	s.artifact = nil
	s.result = nil
	s.loading = false
	s.errMsg = ""
	s.publishLocked()
	s.mu.Unlock()
}

// IsCurrent reports whether artifactID names the selected artifact.
func (s *State) IsCurrent(artifactID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(artifactID)
}

// Snapshot returns a copy of the state. Copied flags are left zero; they are
// owned by the feedback component.
func (s *State) Snapshot() types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives the latest snapshot after every
// mutation, and a function that cancels the subscription. Slow readers only
// ever see the newest value.
func (s *State) Subscribe() (<-chan types.Snapshot, func()) {
	ch := make(chan types.Snapshot, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, c := range s.subs {
				if c == ch {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *State) currentLocked(artifactID string) bool {
	return s.artifact != nil && s.artifact.ID == artifactID
}

func (s *State) snapshotLocked() types.Snapshot {
	return types.Snapshot{
		Artifact: s.artifact,
		Result:   s.result,
		Loading:  s.loading,
		Error:    s.errMsg,
	}
}

func (s *State) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
