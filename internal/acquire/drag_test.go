package acquire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDragTracker(t *testing.T) {
	var d DragTracker
	assert.False(t, d.Active())

	steps := []struct {
		event DragEvent
		want  bool
	}{
		{DragEnter, true},
		{DragOver, true},
		{DragLeave, false},
		{DragOver, true},
		{DragDrop, false},
	}
	for _, s := range steps {
		assert.Equal(t, s.want, d.Handle(s.event), "after %s", s.event)
	}
}

func TestParseDragEvent(t *testing.T) {
	e, ok := ParseDragEvent("enter")
	assert.True(t, ok)
	assert.Equal(t, DragEnter, e)

	_, ok = ParseDragEvent("hover")
	assert.False(t, ok)
}
