// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clipboard reads and writes the desktop clipboard through the
// platform's command-line tools: wl-clipboard on Wayland, xclip on X11,
// pbcopy/pngpaste on macOS.
package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/sfenizer/internal/toolexec"
	"github.com/pdiddy/sfenizer/pkg/types"
)

// backend describes how one tool family is driven.
type backend struct {
	name string
	req  toolexec.Requirement

	// write is the argv that copies stdin as text.
	write []string

	// listTypes is the argv that prints one offered MIME type per line.
	// When nil, fixedTypes are offered instead.
	listTypes  []string
	fixedTypes []string

	// read returns the argv that prints the payload of mimeType.
	read func(mimeType string) []string
}

func (b *backend) Name() string                      { return b.name }
func (b *backend) Requirement() toolexec.Requirement { return b.req }

var (
	wayland = &backend{
		name:      "wl-clipboard",
		req:       toolexec.Requirement{Bins: []string{"wl-copy", "wl-paste"}, Env: "WAYLAND_DISPLAY"},
		write:     []string{"wl-copy", "--type", "text/plain;charset=utf-8"},
		listTypes: []string{"wl-paste", "--list-types"},
		read: func(mimeType string) []string {
			return []string{"wl-paste", "--no-newline", "--type", mimeType}
		},
	}
	x11 = &backend{
		name:      "xclip",
		req:       toolexec.Requirement{Bins: []string{"xclip"}, Env: "DISPLAY"},
		write:     []string{"xclip", "-selection", "clipboard", "-in"},
		listTypes: []string{"xclip", "-selection", "clipboard", "-target", "TARGETS", "-out"},
		read: func(mimeType string) []string {
			return []string{"xclip", "-selection", "clipboard", "-target", mimeType, "-out"}
		},
	}
	macos = &backend{
		name:       "pbcopy",
		req:        toolexec.Requirement{Bins: []string{"pbcopy", "pngpaste"}},
		write:      []string{"pbcopy"},
		fixedTypes: []string{"image/png"},
		read: func(string) []string {
			return []string{"pngpaste", "-"}
		},
	}
)

// Clipboard is the system clipboard as seen through one tool family.
type Clipboard struct {
	b  *backend
	ex toolexec.Executor
}

// Detect picks the first clipboard tool usable on this machine.
func Detect() (*Clipboard, error) {
	return detect(toolexec.Default)
}

func detect(ex toolexec.Executor) (*Clipboard, error) {
	b, err := toolexec.Detect(ex, "clipboard tool", wayland, x11, macos)
	if err != nil {
		return nil, err
	}
	return &Clipboard{b: b, ex: ex}, nil
}

// Name returns the tool family in use.
func (c *Clipboard) Name() string { return c.b.name }

// WriteText replaces the clipboard contents with text.
func (c *Clipboard) WriteText(ctx context.Context, text string) error {
	argv := c.b.write
	if err := c.ex.Run(ctx, argv[0], argv[1:], strings.NewReader(text), nil); err != nil {
		return fmt.Errorf("writing clipboard via %s: %w", c.b.name, err)
	}
	return nil
}

// Items lists what the clipboard currently offers, in the order the tool
// reports it. Payloads are fetched only when an item's Data is called.
func (c *Clipboard) Items(ctx context.Context) ([]types.ClipboardItem, error) {
	mimeTypes := c.b.fixedTypes
	if c.b.listTypes != nil {
		argv := c.b.listTypes
		out, err := toolexec.Output(ctx, c.ex, argv[0], argv[1:]...)
		if err != nil {
			return nil, fmt.Errorf("listing clipboard types via %s: %w", c.b.name, err)
		}
		mimeTypes = parseTypes(out)
	}

	items := make([]types.ClipboardItem, 0, len(mimeTypes))
	for _, mt := range mimeTypes {
		argv := c.b.read(mt)
		items = append(items, types.ClipboardItem{
			MIMEType: mt,
			Name:     "clipboard" + extensionFor(mt),
			Data: func() ([]byte, error) {
				var out bytes.Buffer
				if err := c.ex.Run(ctx, argv[0], argv[1:], nil, &out); err != nil {
					return nil, fmt.Errorf("reading %s from clipboard: %w", mt, err)
				}
				if out.Len() == 0 {
					return nil, fmt.Errorf("clipboard %s payload is empty", mt)
				}
				return out.Bytes(), nil
			},
		})
	}
	return items, nil
}

// parseTypes keeps the MIME-looking lines of a target listing. X11 also
// reports atoms such as TARGETS and UTF8_STRING, which are skipped.
func parseTypes(out []byte) []string {
	var mimeTypes []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		t := strings.TrimSpace(line)
		if !strings.Contains(t, "/") || seen[t] {
			continue
		}
		seen[t] = true
		mimeTypes = append(mimeTypes, t)
	}
	return mimeTypes
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	}
	return ""
}
