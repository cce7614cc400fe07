// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import "sync"

// DragEvent is a drag interaction on the drop target.
type DragEvent string

const (
	DragEnter DragEvent = "enter"
	DragOver  DragEvent = "over"
	DragLeave DragEvent = "leave"
	DragDrop  DragEvent = "drop"
)

// ParseDragEvent converts s into a DragEvent.
func ParseDragEvent(s string) (DragEvent, bool) {
	switch e := DragEvent(s); e {
	case DragEnter, DragOver, DragLeave, DragDrop:
		return e, true
	}
	return "", false
}

// DragTracker holds the "something is being dragged over the target" flag.
// It belongs to the drop surface and never touches the selection.
type DragTracker struct {
	mu     sync.Mutex
	active bool
}

// Handle applies e and returns the new flag value.
func (d *DragTracker) Handle(e DragEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch e {
	case DragEnter, DragOver:
		d.active = true
	case DragLeave, DragDrop:
		d.active = false
	}
	return d.active
}

// Active reports whether a drag is hovering over the target.
func (d *DragTracker) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}
